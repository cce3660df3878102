package checklist

import "github.com/fastygo/dispatch/domain"

// CompletionFlow names the extra step a driver performs when completing a task.
type CompletionFlow string

const (
	FlowNone                   CompletionFlow = ""
	FlowReplacementCarDelivery CompletionFlow = "replacement_car_delivery"
	FlowLicenceTest            CompletionFlow = "licence_test"
)

// StartChecklist returns the checklist required to start a task of type t, or nil.
func StartChecklist(t domain.TaskType) Schema {
	if t != domain.TypeLicenceTest {
		return nil
	}
	return Schema{
		{ID: "car_license", Type: FieldBoolean, Title: "האם לקחת רשיון רכב?", Required: true},
		{ID: "client_license", Type: FieldBoolean, Title: "האם לקחת רשיון נהיגה של הלקוח?", Required: true},
		{ID: "vehicle_insurance", Type: FieldBoolean, Title: "האם לקחת ביטוח חובה של הרכב?", Required: true},
	}
}

// Completion returns the completion flow of type t and its schema, if any.
func Completion(t domain.TaskType) (CompletionFlow, Schema) {
	switch t {
	case domain.TypeReplacementCarDelivery:
		return FlowReplacementCarDelivery, Schema{
			{ID: "signature_url", Type: FieldText, Title: "חתימת לקוח", Required: true},
			{ID: "photo_url", Type: FieldText, Title: "תמונת רכב", Required: true},
			{ID: "odometer", Type: FieldNumber, Title: "קילומטראז'", Constraints: &Constraints{Min: floatPtr(0)}},
		}
	case domain.TypeLicenceTest:
		return FlowLicenceTest, Schema{
			{ID: "details", Type: FieldTextarea, Title: "עלויות נוספות/תוספות מחיר", Constraints: &Constraints{MaxLength: intPtr(1000)}},
			{ID: "advisor_name", Type: FieldText, Title: "שם היועץ", Constraints: &Constraints{MaxLength: intPtr(120)}},
		}
	}
	return FlowNone, nil
}

func floatPtr(v float64) *float64 { return &v }
