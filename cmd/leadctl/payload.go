package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yanizio/propertysite/internal/form"
	"github.com/yanizio/propertysite/internal/lead"
	"github.com/yanizio/propertysite/internal/property"
	"github.com/yanizio/propertysite/internal/whatsapp"
)

// payloadFlags are shared by submit and link.
type payloadFlags struct {
	formType   string
	name       string
	email      string
	phone      string
	message    string
	propertyID string
	category   string
	project    string
	budget     string
	visitDate  string
	visitTime  string
	number     string
	region     string
}

func (p *payloadFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&p.formType, "type", "t", string(lead.FormContact), "Form type: contact, booking, or enquiry")
	f.StringVar(&p.name, "name", "", "Full name")
	f.StringVar(&p.email, "email", "", "Email address")
	f.StringVar(&p.phone, "phone", "", "10-digit mobile number")
	f.StringVar(&p.message, "message", "", "Free-text message")
	f.StringVar(&p.propertyID, "property", "", "Catalogue id of the listing the lead is about")
	f.StringVar(&p.category, "category", "", "Property category (Residential or Commercial)")
	f.StringVar(&p.project, "project", "", "BHK or unit type")
	f.StringVar(&p.budget, "budget", "", "Budget band, e.g. \"1.5 Cr - 2 Cr\"")
	f.StringVar(&p.visitDate, "visit-date", "", "Preferred visit date")
	f.StringVar(&p.visitTime, "visit-time", "", "Preferred visit time")
	f.StringVar(&p.number, "number", whatsapp.DefaultNumber, "Business WhatsApp number")
	f.StringVar(&p.region, "region", whatsapp.DefaultRegion, "Region used to read a number without a country code")
}

func (p *payloadFlags) parseType() (lead.FormType, error) {
	ft, ok := lead.ParseFormType(p.formType)
	if !ok {
		return "", fmt.Errorf("unknown form type %q", p.formType)
	}
	return ft, nil
}

func (p *payloadFlags) listing() (*property.Property, error) {
	if p.propertyID == "" {
		return nil, nil
	}
	prop, ok := property.ByID(p.propertyID)
	if !ok {
		return nil, fmt.Errorf("unknown property %q", p.propertyID)
	}
	return &prop, nil
}

// values returns only the flags that were given, so form defaults such as
// the seeded enquiry message survive.
func (p *payloadFlags) values() form.Values {
	v := form.Values{}
	for name, val := range map[string]string{
		form.FieldFullName:         p.name,
		form.FieldEmail:            p.email,
		form.FieldPhone:            p.phone,
		form.FieldMessage:          p.message,
		form.FieldPropertyCategory: p.category,
		form.FieldProject:          p.project,
		form.FieldBudget:           p.budget,
		form.FieldVisitDate:        p.visitDate,
		form.FieldVisitTime:        p.visitTime,
	} {
		if val != "" {
			v[name] = val
		}
	}
	return v
}
