package gateway

import (
	"github.com/mcdev12/auctionroom/go/internal/auction"
	"github.com/mcdev12/auctionroom/go/internal/auction/events"
	"github.com/mcdev12/auctionroom/go/internal/models"
)

// MessageType identifies a websocket frame
type MessageType string

const (
	// Server to client
	MessageSnapshot     MessageType = "snapshot"
	MessageEvent        MessageType = "event"
	MessageBidAccepted  MessageType = "bid_accepted"
	MessageBidRejected  MessageType = "bid_rejected"
	MessageError        MessageType = "error"
	MessageSessionEnded MessageType = "session_ended"

	// Client to server
	MessageBid   MessageType = "bid"
	MessageState MessageType = "state"
)

// Message is a frame written to websocket clients
type Message struct {
	Type      MessageType    `json:"type"`
	SessionID string         `json:"session_id"`
	State     *auction.State `json:"state,omitempty"`
	Event     *events.Event  `json:"event,omitempty"`
	Bid       *models.Bid    `json:"bid,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// ClientMessage is a frame read from websocket clients.
// TeamID defaults to the team the connection was opened for.
type ClientMessage struct {
	Type   MessageType `json:"type"`
	TeamID string      `json:"team_id,omitempty"`
}

type createSessionRequest struct {
	League      models.League `json:"league"`
	HumanTeamID string        `json:"human_team_id"`
}

type bidRequest struct {
	TeamID string `json:"team_id"`
}

type teamsResponse struct {
	League models.LeagueConfig `json:"league"`
	Teams  []models.Team       `json:"teams"`
}

type errorResponse struct {
	Error string `json:"error"`
}
