package services

import (
	"time"

	"github.com/srgjo27/resort_booking/internal/core/domain"
)

var transitions = map[domain.BookingStatus][]domain.BookingStatus{
	domain.BookingPending:   {domain.BookingConfirmed, domain.BookingDeclined},
	domain.BookingConfirmed: {domain.BookingCheckedIn, domain.BookingCancelled},
	domain.BookingCheckedIn: {domain.BookingCompleted},
	domain.BookingCompleted: nil,
	domain.BookingCancelled: nil,
	domain.BookingDeclined:  nil,
}

var actionsByStatus = map[domain.BookingStatus][]domain.Action{
	domain.BookingPending:   {domain.ActionApprove, domain.ActionDecline, domain.ActionViewReceipt},
	domain.BookingConfirmed: {domain.ActionCheckIn, domain.ActionCancel, domain.ActionViewReceipt},
	domain.BookingCheckedIn: {domain.ActionExtend, domain.ActionCheckOut, domain.ActionViewReceipt},
	domain.BookingCompleted: {domain.ActionViewReceipt},
	domain.BookingCancelled: {domain.ActionViewReceipt},
	domain.BookingDeclined:  {domain.ActionViewReceipt},
}

// actionTargets lists the status each action moves to. Actions missing here
// leave the status unchanged.
var actionTargets = map[domain.Action]domain.BookingStatus{
	domain.ActionApprove:  domain.BookingConfirmed,
	domain.ActionDecline:  domain.BookingDeclined,
	domain.ActionCheckIn:  domain.BookingCheckedIn,
	domain.ActionCancel:   domain.BookingCancelled,
	domain.ActionCheckOut: domain.BookingCompleted,
}

type LifecycleClassifier struct {
	now func() time.Time
}

func NewLifecycleClassifier() *LifecycleClassifier {
	return &LifecycleClassifier{now: time.Now}
}

func (l *LifecycleClassifier) ClassifyBucket(s domain.BookingStatus) (domain.Bucket, error) {
	switch s {
	case domain.BookingPending, domain.BookingConfirmed, domain.BookingCheckedIn:
		return domain.BucketActive, nil
	case domain.BookingCompleted, domain.BookingCancelled, domain.BookingDeclined:
		return domain.BucketHistory, nil
	}
	return "", &domain.UnknownStatusError{Status: string(s)}
}

func (l *LifecycleClassifier) StatusesIn(b domain.Bucket) ([]domain.BookingStatus, error) {
	var out []domain.BookingStatus
	for _, s := range domain.AllStatuses {
		got, _ := l.ClassifyBucket(s)
		if got == b {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil, &domain.ValidationError{Field: "bucket", Reason: "must be active or history"}
	}
	return out, nil
}

func (l *LifecycleClassifier) CanTransition(from, to domain.BookingStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (l *LifecycleClassifier) Transition(from, to domain.BookingStatus) error {
	if !from.Valid() {
		return &domain.UnknownStatusError{Status: string(from)}
	}
	if !to.Valid() {
		return &domain.UnknownStatusError{Status: string(to)}
	}
	if !l.CanTransition(from, to) {
		return &domain.InvalidTransitionError{From: from, To: to}
	}
	return nil
}

func (l *LifecycleClassifier) AllowedActions(s domain.BookingStatus) ([]domain.Action, error) {
	actions, ok := actionsByStatus[s]
	if !ok {
		return nil, &domain.UnknownStatusError{Status: string(s)}
	}
	return append([]domain.Action(nil), actions...), nil
}

func (l *LifecycleClassifier) Authorize(s domain.BookingStatus, a domain.Action) error {
	allowed, err := l.AllowedActions(s)
	if err != nil {
		return err
	}
	for _, x := range allowed {
		if x == a {
			return nil
		}
	}
	return &domain.InvalidTransitionError{From: s, To: actionTargets[a], Action: a}
}

// Apply validates action against the reservation and, when it is legal,
// moves the reservation to the action's target status. The returned command
// is what persistence has to record.
func (l *LifecycleClassifier) Apply(r *domain.Reservation, a domain.Action) (domain.StatusCommand, error) {
	if err := l.Authorize(r.Status, a); err != nil {
		return domain.StatusCommand{}, err
	}
	if a == domain.ActionApprove && !r.ProofOfPaymentPresent {
		return domain.StatusCommand{}, &domain.ValidationError{Field: "proof_of_payment", Reason: "must be uploaded before approval"}
	}

	target := r.Status
	if t, ok := actionTargets[a]; ok {
		if err := l.Transition(r.Status, t); err != nil {
			return domain.StatusCommand{}, err
		}
		target = t
	}

	cmd := domain.StatusCommand{
		ReservationID: r.ID,
		ReferenceCode: r.ReferenceCode,
		From:          r.Status,
		Target:        target,
		Action:        a,
		IssuedAt:      l.now().UTC(),
	}
	r.Status = target
	return cmd, nil
}
