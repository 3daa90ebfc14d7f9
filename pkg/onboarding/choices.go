package onboarding

import "github.com/goliatone/go-stepform/pkg/field"

// Blank is the placeholder first option of every select.
var Blank = field.Choice{Text: "---------", Value: ""}

// States lists US states and DC by postal code.
var States = []field.Choice{
	{Text: "Alabama", Value: "AL"},
	{Text: "Alaska", Value: "AK"},
	{Text: "Arizona", Value: "AZ"},
	{Text: "Arkansas", Value: "AR"},
	{Text: "California", Value: "CA"},
	{Text: "Colorado", Value: "CO"},
	{Text: "Connecticut", Value: "CT"},
	{Text: "Delaware", Value: "DE"},
	{Text: "District of Columbia", Value: "DC"},
	{Text: "Florida", Value: "FL"},
	{Text: "Georgia", Value: "GA"},
	{Text: "Hawaii", Value: "HI"},
	{Text: "Idaho", Value: "ID"},
	{Text: "Illinois", Value: "IL"},
	{Text: "Indiana", Value: "IN"},
	{Text: "Iowa", Value: "IA"},
	{Text: "Kansas", Value: "KS"},
	{Text: "Kentucky", Value: "KY"},
	{Text: "Louisiana", Value: "LA"},
	{Text: "Maine", Value: "ME"},
	{Text: "Maryland", Value: "MD"},
	{Text: "Massachusetts", Value: "MA"},
	{Text: "Michigan", Value: "MI"},
	{Text: "Minnesota", Value: "MN"},
	{Text: "Mississippi", Value: "MS"},
	{Text: "Missouri", Value: "MO"},
	{Text: "Montana", Value: "MT"},
	{Text: "Nebraska", Value: "NE"},
	{Text: "Nevada", Value: "NV"},
	{Text: "New Hampshire", Value: "NH"},
	{Text: "New Jersey", Value: "NJ"},
	{Text: "New Mexico", Value: "NM"},
	{Text: "New York", Value: "NY"},
	{Text: "North Carolina", Value: "NC"},
	{Text: "North Dakota", Value: "ND"},
	{Text: "Ohio", Value: "OH"},
	{Text: "Oklahoma", Value: "OK"},
	{Text: "Oregon", Value: "OR"},
	{Text: "Pennsylvania", Value: "PA"},
	{Text: "Rhode Island", Value: "RI"},
	{Text: "South Carolina", Value: "SC"},
	{Text: "South Dakota", Value: "SD"},
	{Text: "Tennessee", Value: "TN"},
	{Text: "Texas", Value: "TX"},
	{Text: "Utah", Value: "UT"},
	{Text: "Vermont", Value: "VT"},
	{Text: "Virginia", Value: "VA"},
	{Text: "Washington", Value: "WA"},
	{Text: "West Virginia", Value: "WV"},
	{Text: "Wisconsin", Value: "WI"},
	{Text: "Wyoming", Value: "WY"},
}

// FilingStatuses are the filing status options of a return.
var FilingStatuses = []field.Choice{
	{Text: "Single", Value: "SINGLE"},
	{Text: "Married, filing jointly", Value: MarriedJoint},
	{Text: "Married, filing separately", Value: "MARRIED_SEPARATE"},
	{Text: "Head of household", Value: "HEAD"},
	{Text: "Widow", Value: "WIDOW"},
}

// MarriedJoint is the filing status that requires spouse details.
const MarriedJoint = "MARRIED_JOINT"

// Relationships are the dependent relationship options.
var Relationships = []field.Choice{
	{Text: "Daughter", Value: "DAUGHTER"},
	{Text: "Son", Value: "SON"},
	{Text: "Aunt", Value: "AUNT"},
	{Text: "Brother", Value: "BROTHER"},
	{Text: "Foster Child", Value: "FOSTER_CHILD"},
	{Text: "Grandchild", Value: "GRANDCHILD"},
	{Text: "Grandparent", Value: "GRANDPARENT"},
	{Text: "Half Brother", Value: "HALF_BROTHER"},
	{Text: "Half Sister", Value: "HALF_SISTER"},
	{Text: "Nephew", Value: "NEPHEW"},
	{Text: "Niece", Value: "NIECE"},
	{Text: "None", Value: "NONE"},
	{Text: "Other", Value: "OTHER"},
	{Text: "Parent", Value: "PARENT"},
	{Text: "Sister", Value: "SISTER"},
	{Text: "Stepbrother", Value: "STEPBROTHER"},
	{Text: "Stepchild", Value: "STEPCHILD"},
	{Text: "Stepsister", Value: "STEPSISTER"},
	{Text: "Uncle", Value: "UNCLE"},
}

func withBlank(choices []field.Choice) []field.Choice {
	out := make([]field.Choice, 0, len(choices)+1)
	out = append(out, Blank)
	return append(out, choices...)
}
