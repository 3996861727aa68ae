package card

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/emersion/go-vcard"
)

// Semicolons separate structured components and values may not carry a bare CR.
var valueCleaner = strings.NewReplacer("\r\n", "\n", "\r", "\n", ";", ",")

// VCard encodes owner as a vCard 3.0 document.
func VCard(owner Owner) ([]byte, error) {
	first, last := splitName(owner.FullName)

	c := make(vcard.Card)
	c.SetValue(vcard.FieldVersion, "3.0")
	c.SetValue(vcard.FieldFormattedName, clean(owner.FullName))
	c.SetName(&vcard.Name{FamilyName: clean(last), GivenName: clean(first)})
	setIfPresent(c, vcard.FieldOrganization, owner.Organization, nil)
	setIfPresent(c, vcard.FieldTitle, owner.Title, nil)
	setIfPresent(c, vcard.FieldEmail, owner.Email, vcard.Params{vcard.ParamType: {"INTERNET"}})
	setIfPresent(c, vcard.FieldTelephone, owner.Phone, vcard.Params{vcard.ParamType: {vcard.TypeCell}})
	if owner.City != "" || owner.Region != "" {
		c.SetAddress(&vcard.Address{
			Field:    &vcard.Field{Params: vcard.Params{vcard.ParamType: {vcard.TypeWork}}},
			Locality: clean(owner.City),
			Region:   clean(owner.Region),
		})
	}
	setIfPresent(c, vcard.FieldURL, owner.SiteURL, nil)

	var buf bytes.Buffer
	if err := vcard.NewEncoder(&buf).Encode(c); err != nil {
		return nil, fmt.Errorf("failed to encode vcard: %w", err)
	}
	return buf.Bytes(), nil
}

// FileName derives the download name, e.g. "jane-doe-contact.vcf".
func FileName(owner Owner) string {
	slug := strings.Join(strings.Fields(strings.ToLower(owner.FullName)), "-")
	if slug == "" {
		return "contact.vcf"
	}
	return slug + "-contact.vcf"
}

func setIfPresent(c vcard.Card, field, value string, params vcard.Params) {
	if value == "" {
		return
	}
	c.Set(field, &vcard.Field{Value: clean(value), Params: params})
}

func clean(value string) string {
	return valueCleaner.Replace(value)
}

func splitName(full string) (first, last string) {
	full = strings.TrimSpace(full)
	i := strings.LastIndex(full, " ")
	if i < 0 {
		return full, ""
	}
	return strings.TrimSpace(full[:i]), full[i+1:]
}
