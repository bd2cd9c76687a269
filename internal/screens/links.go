package screens

import "slices"

// Link is a button one screen offers to reach another.
type Link struct {
	From, To string
	Label    string
	// Notify marks buttons delivered in a message to another chat.
	Notify bool
}

// Links lists the navigation offered by the screens, for documentation.
func Links() []Link {
	return []Link{
		{From: SegRoot, To: SegFeedback},
		{From: SegRoot, To: SegReview},
		{From: SegRoot, To: SegRequests},
		{From: SegRoot, To: SegInvite},
		{From: SegRoot, To: SegMailing},
		{From: SegRoot, To: SegStats},
		{From: SegFeedback, To: SegFeedbackNew},
		{From: SegFeedbackNew, To: SegTake, Label: "alert", Notify: true},
		{From: SegRequests, To: SegTake},
		{From: SegRequests, To: SegDone},
		{From: SegTake, To: SegDone},
		{From: SegDone, To: SegRequests},
	}
}

// IsAction reports whether segment performs a state change when opened.
func IsAction(segment string) bool {
	return slices.Contains([]string{SegTake, SegDone}, segment)
}
