package booking

import "testing"

func TestCanTransition(t *testing.T) {
	t.Parallel()

	statuses := []AppointmentStatus{StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted}

	legal := map[[2]AppointmentStatus]bool{
		{StatusPending, StatusConfirmed}:   true,
		{StatusPending, StatusCancelled}:   true,
		{StatusConfirmed, StatusCompleted}: true,
		{StatusConfirmed, StatusCancelled}: true,
	}

	for _, from := range statuses {
		for _, to := range statuses {
			want := legal[[2]AppointmentStatus{from, to}]
			if got := CanTransition(from, to); got != want {
				t.Errorf("CanTransition(%s, %s) = %t, want %t", from, to, got, want)
			}
		}
	}
}

func TestTerminalStatesHaveNoExits(t *testing.T) {
	t.Parallel()

	for _, terminal := range []AppointmentStatus{StatusCancelled, StatusCompleted} {
		for _, to := range []AppointmentStatus{StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted} {
			if CanTransition(terminal, to) {
				t.Errorf("terminal state %s allows transition to %s", terminal, to)
			}
		}
	}
}

func TestValidStatus(t *testing.T) {
	t.Parallel()

	for _, s := range []AppointmentStatus{StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted} {
		if !ValidStatus(s) {
			t.Errorf("ValidStatus(%s) = false", s)
		}
	}
	for _, s := range []AppointmentStatus{"", "Expired", "pending", "Done"} {
		if ValidStatus(s) {
			t.Errorf("ValidStatus(%q) = true", s)
		}
	}
}
