package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/unobots/internal/game"
	"github.com/lox/unobots/internal/randsrc"
)

// testStack wires the full server: registry, service, provider with a
// deterministic seed stream, and the websocket broadcaster.
func testStack(t *testing.T) *httptest.Server {
	t.Helper()

	logger := testLogger()
	config := game.DefaultConfig()

	registry := NewRegistry(logger, config)
	svc := NewGameService(logger, registry)
	svc.SetProvider(randsrc.NewLocal(logger, randsrc.Config{Seed: 99}, svc.DeliverSeed))

	s := NewServer(logger)
	s.SetGameService(svc)
	svc.AddSink(NewEventBroadcaster(s, logger))

	ts := httptest.NewServer(s.Handler())
	s.Run()
	t.Cleanup(func() {
		_ = s.Stop()
		ts.Close()
	})
	return ts
}

type wsClient struct {
	t    *testing.T
	conn *websocket.Conn
}

func dialClient(t *testing.T, ts *httptest.Server) *wsClient {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return &wsClient{t: t, conn: conn}
}

func (c *wsClient) send(messageType MessageType, data interface{}) {
	c.t.Helper()
	msg, err := NewMessage(messageType, data)
	require.NoError(c.t, err)
	require.NoError(c.t, c.conn.WriteJSON(msg))
}

// waitFor reads messages until one of the wanted type arrives,
// discarding unrelated broadcasts along the way. An error message
// other than the wanted type fails the test.
func (c *wsClient) waitFor(messageType MessageType) *Message {
	c.t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		require.NoError(c.t, c.conn.SetReadDeadline(deadline))
		var msg Message
		require.NoError(c.t, c.conn.ReadJSON(&msg))
		if msg.Type == messageType {
			return &msg
		}
		if msg.Type == MessageTypeError {
			var errData ErrorData
			_ = json.Unmarshal(msg.Data, &errData)
			c.t.Fatalf("unexpected error waiting for %s: %s (%s)", messageType, errData.Code, errData.Message)
		}
	}
}

func (c *wsClient) auth(name string) {
	c.t.Helper()
	c.send(MessageTypeAuth, AuthData{PlayerName: name})
	msg := c.waitFor(MessageTypeAuthResponse)
	var resp AuthResponseData
	require.NoError(c.t, json.Unmarshal(msg.Data, &resp))
	require.True(c.t, resp.Success)
	require.NotEmpty(c.t, resp.Token)
}

func TestHealthEndpoint(t *testing.T) {
	ts := testStack(t)
	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuthRequiredForGameOperations(t *testing.T) {
	ts := testStack(t)
	client := dialClient(t, ts)

	client.send(MessageTypeCreateGame, nil)
	msg := client.waitFor(MessageTypeError)
	var errData ErrorData
	require.NoError(t, json.Unmarshal(msg.Data, &errData))
	assert.Equal(t, "not_authenticated", errData.Code)
}

func TestFullGameOverWebSocket(t *testing.T) {
	ts := testStack(t)

	alice := dialClient(t, ts)
	bob := dialClient(t, ts)
	alice.auth("alice")
	bob.auth("bob")

	alice.send(MessageTypeCreateGame, nil)
	created := alice.waitFor(MessageTypeGameCreated)
	var createdData GameCreatedData
	require.NoError(t, json.Unmarshal(created.Data, &createdData))
	gameID := createdData.Game.ID
	require.NotEmpty(t, gameID)

	alice.send(MessageTypeJoinGame, JoinGameData{GameID: gameID})
	alice.waitFor(MessageTypeGameJoined)
	bob.send(MessageTypeJoinGame, JoinGameData{GameID: gameID})
	bob.waitFor(MessageTypeGameJoined)

	alice.send(MessageTypeStartGame, StartGameData{GameID: gameID})
	alice.waitFor(MessageTypeOK)

	// Setup completes asynchronously once the seed is delivered; both
	// players see the broadcast.
	setupMsg := alice.waitFor(MessageTypeSetupComplete)
	var setup SetupCompleteData
	require.NoError(t, json.Unmarshal(setupMsg.Data, &setup))
	bob.waitFor(MessageTypeSetupComplete)

	assert.Equal(t, gameID, setup.GameID)
	assert.NotEmpty(t, setup.TopCard)
	assert.Contains(t, []int{0, 1}, setup.StartingSeat)

	// Seats follow join order: alice is 0, bob is 1
	actor, other := alice, bob
	if setup.StartingSeat == 1 {
		actor, other = bob, alice
	}

	// A wild card is legal on any top card
	actor.send(MessageTypePlayCard, PlayCardData{
		GameID: gameID,
		Card:   CardData{Color: "Wild", Type: "Wild"},
	})
	actor.waitFor(MessageTypeOK)

	played := other.waitFor(MessageTypeCardPlayed)
	var play CardPlayedData
	require.NoError(t, json.Unmarshal(played.Data, &play))
	assert.Equal(t, "Wild", play.Card.Type)
	assert.Equal(t, setup.StartingSeat^1, play.NextSeat)

	// Out of turn play is rejected with its stable code
	actor.send(MessageTypePlayCard, PlayCardData{
		GameID: gameID,
		Card:   CardData{Color: "Wild", Type: "Wild"},
	})
	errMsg := actor.waitFor(MessageTypeError)
	var errData ErrorData
	require.NoError(t, json.Unmarshal(errMsg.Data, &errData))
	assert.Equal(t, "not_your_turn", errData.Code)
}

func TestListGamesOverWebSocket(t *testing.T) {
	ts := testStack(t)
	client := dialClient(t, ts)
	client.auth("alice")

	client.send(MessageTypeCreateGame, nil)
	client.waitFor(MessageTypeGameCreated)
	client.send(MessageTypeCreateGame, nil)
	client.waitFor(MessageTypeGameCreated)

	client.send(MessageTypeListGames, nil)
	msg := client.waitFor(MessageTypeGameList)
	var list GameListData
	require.NoError(t, json.Unmarshal(msg.Data, &list))
	assert.Len(t, list.Games, 2)
}
