package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/trailquest/hunt/internal/game"
)

func testBroker(t *testing.T) *Broker {
	t.Helper()
	b := NewBroker(slog.New(slog.NewTextHandler(io.Discard, nil)), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		b.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return b
}

func recvEvent(t *testing.T, ch chan []byte) Event {
	t.Helper()
	select {
	case data := <-ch:
		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil {
			t.Fatalf("decoding event: %v", err)
		}
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestBrokerDelivers(t *testing.T) {
	b := testBroker(t)

	ch := b.Subscribe(TopicTeams)
	defer b.Unsubscribe(TopicTeams, ch)

	team := game.Team{Code: "TEAM01"}
	b.Publish(TopicTeams, Event{Type: EventTeamUpdate, Team: &team})

	ev := recvEvent(t, ch)
	if ev.Type != EventTeamUpdate {
		t.Errorf("expected type %q, got %q", EventTeamUpdate, ev.Type)
	}
	if ev.ID == "" {
		t.Error("expected an assigned event id")
	}
	if ev.Team == nil || ev.Team.Code != "TEAM01" {
		t.Errorf("expected team snapshot, got %+v", ev.Team)
	}
}

func TestBrokerTopicIsolation(t *testing.T) {
	b := testBroker(t)

	teams := b.Subscribe(TopicTeams)
	defer b.Unsubscribe(TopicTeams, teams)
	own := b.Subscribe(teamTopic("TEAM01"))
	defer b.Unsubscribe(teamTopic("TEAM01"), own)

	b.Publish(teamTopic("TEAM01"), Event{Type: EventSelfieRejected})

	ev := recvEvent(t, own)
	if ev.Type != EventSelfieRejected {
		t.Errorf("expected %q on team topic, got %q", EventSelfieRejected, ev.Type)
	}

	select {
	case data := <-teams:
		t.Errorf("teams topic must not see team-scoped event: %s", data)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestBrokerPreservesOrder(t *testing.T) {
	b := testBroker(t)

	ch := b.Subscribe(TopicVerifications)
	defer b.Unsubscribe(TopicVerifications, ch)

	codes := []string{"TEAM01", "TEAM02", "TEAM03", "TEAM04", "TEAM05"}
	for _, code := range codes {
		team := game.Team{Code: code}
		b.Publish(TopicVerifications, Event{Type: EventNewSelfie, Team: &team})
	}

	for i, want := range codes {
		ev := recvEvent(t, ch)
		if ev.Team.Code != want {
			t.Fatalf("event %d: expected %q, got %q", i, want, ev.Team.Code)
		}
	}
}

func TestBrokerDropsForSlowSubscriber(t *testing.T) {
	b := testBroker(t)

	slow := b.Subscribe(TopicTeams)
	defer b.Unsubscribe(TopicTeams, slow)
	fast := b.Subscribe(TopicTeams)
	defer b.Unsubscribe(TopicTeams, fast)

	// Nobody reads slow; once its buffer fills, later events must still reach
	// the other subscriber instead of blocking delivery.
	total := cap(slow) + 8
	for i := 0; i < total; i++ {
		team := game.Team{Code: "TEAM01", CheckpointIndex: i}
		b.Publish(TopicTeams, Event{Type: EventTeamUpdate, Team: &team})

		ev := recvEvent(t, fast)
		if ev.Team.CheckpointIndex != i {
			t.Fatalf("fast subscriber event %d: got index %d", i, ev.Team.CheckpointIndex)
		}
	}

	if got := len(slow); got != cap(slow) {
		t.Errorf("expected slow subscriber buffer full at %d, got %d", cap(slow), got)
	}
}

func TestBrokerUnsubscribeStopsDelivery(t *testing.T) {
	b := testBroker(t)

	ch := b.Subscribe(TopicTeams)
	b.Unsubscribe(TopicTeams, ch)

	b.Publish(TopicTeams, Event{Type: EventTeamUpdate})

	select {
	case data := <-ch:
		t.Errorf("unexpected delivery after unsubscribe: %s", data)
	case <-time.After(100 * time.Millisecond):
	}
}
