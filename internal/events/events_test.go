package events

import (
	"context"
	"errors"
	"testing"

	"restobook/internal/calendarsync"
	"restobook/pkg/kafka"
	"restobook/pkg/logger"
	"restobook/pkg/model"
)

type mockProducer struct {
	messages []kafka.Message
	err      error
}

func (m *mockProducer) Publish(ctx context.Context, msg kafka.Message) error {
	if m.err != nil {
		return m.err
	}
	m.messages = append(m.messages, msg)
	return nil
}

type mockApplier struct {
	jobs []calendarsync.Job
	err  error
}

func (m *mockApplier) Apply(ctx context.Context, job calendarsync.Job) (string, error) {
	m.jobs = append(m.jobs, job)
	return "evt-1", m.err
}

func reservation() *model.Reservation {
	return &model.Reservation{ID: "r1", TableID: 2, Name: "Ana", PartySize: 2, Date: "2025-05-07", Time: "20:00", Phone: "+34600111222", DurationMin: 90}
}

func TestPublisher(t *testing.T) {
	producer := &mockProducer{}
	p := NewPublisher(producer, logger.NewNop())
	ctx := context.Background()

	before := reservation()
	before.CalendarEventID = "evt-9"
	after := reservation()
	after.Time = "21:00"

	p.ReservationCreated(ctx, before)
	p.ReservationModified(ctx, before, after)
	p.ReservationCancelled(ctx, after)

	if len(producer.messages) != 3 {
		t.Fatalf("published %d messages, want 3", len(producer.messages))
	}

	wantTypes := []Type{ReservationCreated, ReservationModified, ReservationCancelled}
	for i, msg := range producer.messages {
		if msg.Key != "r1" {
			t.Errorf("message %d key = %s, want reservation id", i, msg.Key)
		}
		if msg.GetEventType() != string(wantTypes[i]) {
			t.Errorf("message %d type = %s", i, msg.GetEventType())
		}
		if msg.Headers[kafka.HeaderSchemaVersion] != SchemaVersion {
			t.Errorf("message %d missing schema version", i)
		}
	}

	var modified ReservationEvent
	if err := producer.messages[1].DecodeValue(&modified); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if modified.Previous == nil || modified.Previous.Time != "20:00" || modified.Reservation.Time != "21:00" {
		t.Errorf("modified payload = %+v", modified)
	}
	if modified.OccurredAt.IsZero() {
		t.Error("OccurredAt should be set")
	}
}

func TestPublisher_FailureIsSwallowed(t *testing.T) {
	p := NewPublisher(&mockProducer{err: errors.New("broker down")}, logger.NewNop())
	// must not panic or block
	p.ReservationCreated(context.Background(), reservation())
}

func TestCalendarHandler(t *testing.T) {
	encode := func(t *testing.T, event *ReservationEvent) kafka.Message {
		t.Helper()
		msg, err := kafka.NewMessage().WithKey("r1").WithValue(event).Build()
		if err != nil {
			t.Fatalf("Build: %v", err)
		}
		return msg
	}

	t.Run("modified event inherits previous calendar id", func(t *testing.T) {
		applier := &mockApplier{}
		before := reservation()
		before.CalendarEventID = "evt-9"
		after := reservation()
		after.PartySize = 4

		err := CalendarHandler(applier)(context.Background(), encode(t, &ReservationEvent{Type: ReservationModified, Reservation: after, Previous: before}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(applier.jobs) != 1 {
			t.Fatalf("jobs = %d", len(applier.jobs))
		}
		job := applier.jobs[0]
		if job.Kind != calendarsync.JobModified || job.Reservation.CalendarEventID != "evt-9" || job.Reservation.PartySize != 4 {
			t.Errorf("job = %+v / %+v", job, job.Reservation)
		}
	})

	t.Run("garbage is permanent", func(t *testing.T) {
		applier := &mockApplier{}
		err := CalendarHandler(applier)(context.Background(), kafka.Message{Key: "r1", Value: []byte("not json")})
		if kafka.ClassifyError(err) != kafka.ErrorTypePermanent {
			t.Errorf("expected permanent error, got %v", err)
		}
		if len(applier.jobs) != 0 {
			t.Error("applier should not run")
		}
	})

	t.Run("unknown type is permanent", func(t *testing.T) {
		err := CalendarHandler(&mockApplier{})(context.Background(), encode(t, &ReservationEvent{Type: "reservation.archived", Reservation: reservation()}))
		if kafka.ClassifyError(err) != kafka.ErrorTypePermanent {
			t.Errorf("expected permanent error, got %v", err)
		}
	})

	t.Run("applier failure is returned for classification", func(t *testing.T) {
		applier := &mockApplier{err: errors.New("calendar create failed with status 503: backend")}
		err := CalendarHandler(applier)(context.Background(), encode(t, &ReservationEvent{Type: ReservationCreated, Reservation: reservation()}))
		if kafka.ClassifyError(err) != kafka.ErrorTypeTransient {
			t.Errorf("expected transient error, got %v", err)
		}
	})
}
