// Package record defines the typed ExpertLog and ExpertCamp records and the
// single normalization layer between the wire format and store columns.
//
// Wire JSON keys are matched case-insensitively (totalMen, TOTALMEN and
// totalmen all name the totalmen column). Validation errors name the field
// in its wire spelling. Read responses use the column names as JSON keys.
//
// Text is stored exactly as received.
package record
