package order

import "slices"

// Sequence is the fixed, totally ordered list of progress states.
var Sequence = []Status{
	StatusPending,
	StatusProcessing,
	StatusShipped,
	StatusOutForDelivery,
	StatusDelivered,
}

// Step is one stage of the progress tracker.
type Step struct {
	// Number is 1-based.
	Number    int
	Status    Status
	Label     string
	Completed bool
}

// Progress marks every step at or before s as completed. Statuses outside
// Sequence complete no steps.
func Progress(s Status) []Step {
	current := slices.Index(Sequence, s)

	steps := make([]Step, len(Sequence))
	for i, st := range Sequence {
		steps[i] = Step{
			Number:    i + 1,
			Status:    st,
			Label:     StepLabel(st),
			Completed: i <= current,
		}
	}
	return steps
}

// StepLabel returns the human label for a progress state.
func StepLabel(s Status) string {
	switch s {
	case StatusPending:
		return "Order Placed"
	case StatusProcessing:
		return "Processing"
	case StatusShipped:
		return "Shipped"
	case StatusOutForDelivery:
		return "Out for Delivery"
	case StatusDelivered:
		return "Delivered"
	default:
		return string(s)
	}
}
