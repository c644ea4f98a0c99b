package chatws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/abhishekjoshi1998/EduPayout/internal/models"
	"github.com/abhishekjoshi1998/EduPayout/internal/services"
)

func receiveFrame(t *testing.T, client *Client) Frame {
	t.Helper()

	select {
	case payload, ok := <-client.send:
		if !ok {
			t.Fatalf("client %d channel closed", client.userID)
		}
		var frame Frame
		if err := json.Unmarshal(payload, &frame); err != nil {
			t.Fatalf("decode frame: %v", err)
		}
		return frame
	case <-time.After(time.Second):
		t.Fatalf("client %d received nothing", client.userID)
	}
	return Frame{}
}

func expectSilence(t *testing.T, client *Client) {
	t.Helper()

	select {
	case payload := <-client.send:
		t.Fatalf("client %d unexpectedly received %s", client.userID, payload)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubPublishReachesSenderAndRecipients(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	admin := NewClient(hub, nil, 1)
	adminSecondTab := NewClient(hub, nil, 1)
	mentor := NewClient(hub, nil, 7)
	otherMentor := NewClient(hub, nil, 8)
	for _, client := range []*Client{admin, adminSecondTab, mentor, otherMentor} {
		hub.Register(client)
	}

	hub.Publish(&services.ChatDelivery{
		Message: &models.ChatMessage{
			ID:         11,
			MentorID:   3,
			SenderID:   7,
			SenderRole: models.RoleMentor,
			Content:    "Is the May payout processed?",
		},
		RecipientIDs: []int64{1},
	})

	for _, client := range []*Client{admin, adminSecondTab, mentor} {
		frame := receiveFrame(t, client)
		if frame.Type != "message" || frame.MentorID != 3 || frame.Message == nil || frame.Message.ID != 11 {
			t.Fatalf("unexpected frame for user %d: %+v", client.userID, frame)
		}
	}
	expectSilence(t, otherMentor)
}

func TestHubUnregisterClosesClient(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := NewClient(hub, nil, 5)
	hub.Register(client)
	hub.Unregister(client)

	select {
	case _, ok := <-client.send:
		if ok {
			t.Fatalf("expected closed channel")
		}
	case <-time.After(time.Second):
		t.Fatalf("client channel was not closed")
	}

	hub.Publish(&services.ChatDelivery{Message: &models.ChatMessage{SenderID: 9, MentorID: 1}, RecipientIDs: []int64{5}})
}

func TestWriteErrorOnlyReachesRegisteredClient(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := NewClient(hub, nil, 4)
	bystander := NewClient(hub, nil, 4)
	hub.Register(client)
	hub.Register(bystander)

	writeError(client, "invalid message payload")

	frame := receiveFrame(t, client)
	if frame.Type != "error" || frame.Error != "invalid message payload" {
		t.Fatalf("unexpected error frame: %+v", frame)
	}
	expectSilence(t, bystander)
}
