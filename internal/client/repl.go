package client

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/lox/unobots/internal/server"
)

// Config holds interactive session settings
type Config struct {
	Server string
	Name   string
	Game   string
}

// Run connects to the server and drives an interactive session: game
// events stream in as styled lines while commands are read from stdin.
func Run(config Config) error {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: false,
		Level:           log.InfoLevel,
	})

	name := strings.TrimSpace(config.Name)
	if name == "" {
		name = os.Getenv("USER")
	}
	if name == "" {
		name = "Player"
	}

	c := NewClient(config.Server, logger)
	styles := NewStyles()
	session := &session{client: c, logger: logger, styles: styles}
	session.registerHandlers()

	if err := c.Connect(); err != nil {
		return err
	}
	defer c.Close()

	if err := c.Authenticate(name); err != nil {
		return err
	}

	if config.Game != "" {
		if err := c.Send(server.MessageTypeJoinGame, server.JoinGameData{GameID: config.Game}); err != nil {
			return err
		}
	}

	fmt.Println(styles.Header.Render("unobots"))
	fmt.Println("Commands: create, join <id>, start, play <color> <rank|type>, low, list, state, quit")

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			return nil
		}
		if err := session.handleCommand(line); err != nil {
			logger.Error("Command failed", "error", err)
		}
		if !c.Connected() {
			return nil
		}
	}
	return scanner.Err()
}

type session struct {
	client *Client
	logger *log.Logger
	styles *Styles
}

func (s *session) registerHandlers() {
	c := s.client

	c.On(server.MessageTypeAuthResponse, func(msg *server.Message) {
		var data server.AuthResponseData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return
		}
		if !data.Success {
			s.logger.Error("Authentication failed", "error", data.Error)
			c.Close()
			return
		}
		c.setIdentity(data.PlayerID, data.Token)
		s.logger.Info("Authenticated", "player", data.PlayerID)
	})

	c.On(server.MessageTypeError, func(msg *server.Message) {
		var data server.ErrorData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return
		}
		s.logger.Error("Server error", "code", data.Code, "message", data.Message)
	})

	c.On(server.MessageTypeGameCreated, func(msg *server.Message) {
		var data server.GameCreatedData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return
		}
		fmt.Printf("Created game %s\n", data.Game.ID)
	})

	c.On(server.MessageTypeGameJoined, func(msg *server.Message) {
		var data server.GameJoinedData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return
		}
		c.SetGameID(data.GameID)
		fmt.Printf("Joined game %s as %s\n", data.GameID, data.PlayerID)
	})

	c.On(server.MessageTypePlayerJoined, func(msg *server.Message) {
		var data server.PlayerJoinedData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return
		}
		fmt.Printf("%s sat down at seat %d\n", data.Player, data.Seat)
	})

	c.On(server.MessageTypeGameStarted, func(msg *server.Message) {
		var data server.GameStartedData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return
		}
		fmt.Printf("Game on: %s (waiting for setup)\n", strings.Join(data.Players, ", "))
	})

	c.On(server.MessageTypeSetupComplete, func(msg *server.Message) {
		var data server.SetupCompleteData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return
		}
		fmt.Printf("Setup complete: seat %d leads, top card %s, color %s\n",
			data.StartingSeat,
			s.styles.RenderCardName(data.TopCard),
			s.styles.RenderCardName(data.StartingColor))
	})

	c.On(server.MessageTypeCardPlayed, func(msg *server.Message) {
		var data server.CardPlayedData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return
		}
		line := fmt.Sprintf("%s played %s (%d left), seat %d to act",
			data.Player, s.styles.RenderCard(data.Card), data.HandSize, data.NextSeat)
		fmt.Println(s.styles.Action.Render(line))
	})

	c.On(server.MessageTypeLowHandDeclared, func(msg *server.Message) {
		var data server.LowHandDeclaredData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return
		}
		fmt.Printf("%s declares a low hand!\n", data.Player)
	})

	c.On(server.MessageTypeGameEnded, func(msg *server.Message) {
		var data server.GameEndedData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return
		}
		fmt.Println(s.styles.Winner.Render(fmt.Sprintf("%s wins game %s", data.Winner, data.GameID)))
	})

	c.On(server.MessageTypeGameList, func(msg *server.Message) {
		var data server.GameListData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return
		}
		if len(data.Games) == 0 {
			fmt.Println("No games")
			return
		}
		for _, g := range data.Games {
			fmt.Printf("  %s  %-11s  %d players\n", g.ID, g.State, len(g.Players))
		}
	})

	c.On(server.MessageTypeGameState, func(msg *server.Message) {
		var snap json.RawMessage = msg.Data
		pretty, err := json.MarshalIndent(snap, "", "  ")
		if err != nil {
			return
		}
		fmt.Println(string(pretty))
	})

	c.On(server.MessageTypeOK, func(msg *server.Message) {})
}

func (s *session) handleCommand(line string) error {
	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "create":
		return s.client.Send(server.MessageTypeCreateGame, nil)

	case "join":
		if len(args) != 1 {
			return fmt.Errorf("usage: join <game-id>")
		}
		return s.client.Send(server.MessageTypeJoinGame, server.JoinGameData{GameID: args[0]})

	case "start":
		return s.requireGame(func(gameID string) error {
			return s.client.Send(server.MessageTypeStartGame, server.StartGameData{GameID: gameID})
		})

	case "play":
		card, err := parseCardArgs(args)
		if err != nil {
			return err
		}
		return s.requireGame(func(gameID string) error {
			return s.client.Send(server.MessageTypePlayCard, server.PlayCardData{GameID: gameID, Card: card})
		})

	case "low":
		return s.requireGame(func(gameID string) error {
			return s.client.Send(server.MessageTypeDeclareLow, server.DeclareLowData{GameID: gameID})
		})

	case "list":
		return s.client.Send(server.MessageTypeListGames, nil)

	case "state":
		return s.requireGame(func(gameID string) error {
			return s.client.Send(server.MessageTypeGameState, server.GameStateData{GameID: gameID})
		})

	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (s *session) requireGame(fn func(gameID string) error) error {
	gameID := s.client.GameID()
	if gameID == "" {
		return fmt.Errorf("join a game first")
	}
	return fn(gameID)
}

// parseCardArgs turns command words into a card proposal. Accepted
// forms: "wild", "wild4", "<color> <rank>", "<color> skip|reverse|draw2".
func parseCardArgs(args []string) (server.CardData, error) {
	if len(args) == 0 {
		return server.CardData{}, fmt.Errorf("usage: play <color> <rank|skip|reverse|draw2> or play wild|wild4")
	}

	switch strings.ToLower(args[0]) {
	case "wild":
		return server.CardData{Color: "Wild", Type: "Wild"}, nil
	case "wild4":
		return server.CardData{Color: "Wild", Type: "WildDrawFour"}, nil
	}

	if len(args) != 2 {
		return server.CardData{}, fmt.Errorf("usage: play <color> <rank|skip|reverse|draw2>")
	}

	color := titleCase(args[0])
	switch strings.ToLower(args[1]) {
	case "skip":
		return server.CardData{Color: color, Type: "Skip"}, nil
	case "reverse":
		return server.CardData{Color: color, Type: "Reverse"}, nil
	case "draw2":
		return server.CardData{Color: color, Type: "DrawTwo"}, nil
	}

	rank, err := strconv.Atoi(args[1])
	if err != nil {
		return server.CardData{}, fmt.Errorf("invalid card %q", strings.Join(args, " "))
	}
	return server.CardData{Color: color, Type: "Number", Rank: rank}, nil
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
