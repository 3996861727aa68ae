package commandstructure

// mockCommand is a Command whose behaviour is supplied by the test
type mockCommand struct {
	name        string
	executeFunc func([]byte) ([]byte, error)
}

func (m *mockCommand) Name() string {
	return m.name
}

func (m *mockCommand) Execute(data []byte) ([]byte, error) {
	if m.executeFunc != nil {
		return m.executeFunc(data)
	}
	return data, nil
}

func newMockCommand(name string) *mockCommand {
	return &mockCommand{name: name}
}

func newMockCommandWithError(name string, err error) *mockCommand {
	return &mockCommand{
		name: name,
		executeFunc: func([]byte) ([]byte, error) {
			return nil, err
		},
	}
}

func appendingFactory(suffix string) CommandFactory {
	return func(params map[string]any) (Command, error) {
		if err := ValidateRequiredParams(params, []string{"label"}); err != nil {
			return nil, err
		}
		label := GetStringParam(params, "label", "")
		return &mockCommand{
			name: label,
			executeFunc: func(data []byte) ([]byte, error) {
				return append(append([]byte{}, data...), []byte(suffix+label)...), nil
			},
		}, nil
	}
}
