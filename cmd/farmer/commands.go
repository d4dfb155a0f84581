package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/osse101/FarmState_Go/internal/domain"
	"github.com/osse101/FarmState_Go/internal/session"
)

var (
	errUnknownCommand = errors.New("unknown command")
	errUsage          = errors.New("usage")
	errQuit           = errors.New("quit")
)

// driver is the part of session.Machine the command loop drives
type driver interface {
	Play(actionType domain.ActionType, payload interface{}) (domain.GameState, error)
	Save() error
	Refresh() error
	Retry() error
	Acknowledge() error
	Continue() error
	Purchase(params domain.OperationParams) error
	Mint(params domain.OperationParams) error
	Transact(params domain.OperationParams) error
	Trade(params domain.OperationParams) error
	Deposit(params domain.OperationParams) error
	View() session.View
}

type usage struct {
	args int
	help string
}

var commands = map[string]usage{
	"plant":    {2, "plant <index> <seed>"},
	"harvest":  {1, "harvest <index>"},
	"remove":   {2, "remove <index> <item>"},
	"buy":      {2, "buy <item> <amount>"},
	"place":    {4, "place <name> <id> <x> <y>"},
	"bud":      {3, "bud <id> <x> <y>"},
	"purchase": {3, "purchase <item> <amount> <price>"},
	"mint":     {2, "mint <item> <amount>"},
	"transact": {2, "transact <item> <price>"},
	"trade":    {1, "trade <listingId>"},
	"deposit":  {2, "deposit <item> <amount>"},
	"save":     {0, "save"},
	"refresh":  {0, "refresh"},
	"retry":    {0, "retry"},
	"ack":      {0, "ack"},
	"continue": {0, "continue"},
	"state":    {0, "state"},
	"help":     {0, "help"},
	"quit":     {0, "quit"},
}

// execute runs one input line against the session. Blank lines are ignored.
// errQuit asks the caller to stop reading.
func execute(d driver, line string, out io.Writer) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	name, args := strings.ToLower(fields[0]), fields[1:]
	u, ok := commands[name]
	if !ok {
		return fmt.Errorf("%w: %s", errUnknownCommand, name)
	}
	if len(args) != u.args {
		return fmt.Errorf("%w: %s", errUsage, u.help)
	}

	switch name {
	case "plant":
		return play(d, domain.ActionFruitPlanted, domain.PlantFruitAction{Index: args[0], Seed: args[1]})
	case "harvest":
		return play(d, domain.ActionFruitHarvested, domain.HarvestFruitAction{Index: args[0]})
	case "remove":
		return play(d, domain.ActionFruitTreeRemoved, domain.RemoveFruitTreeAction{Index: args[0], Item: args[1]})
	case "buy":
		amount, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("%w: %s", errUsage, u.help)
		}
		return play(d, domain.ActionSeedBought, domain.BuySeedAction{Item: args[0], Amount: amount})
	case "place":
		coords, err := parseCoordinates(args[2], args[3])
		if err != nil {
			return fmt.Errorf("%w: %s", errUsage, u.help)
		}
		return play(d, domain.ActionCollectiblePlaced, domain.PlaceCollectibleAction{Name: args[0], ID: args[1], Coordinates: coords})
	case "bud":
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("%w: %s", errUsage, u.help)
		}
		coords, err := parseCoordinates(args[1], args[2])
		if err != nil {
			return fmt.Errorf("%w: %s", errUsage, u.help)
		}
		return play(d, domain.ActionBudPlaced, domain.PlaceBudAction{ID: id, Coordinates: coords})
	case "purchase":
		amount, err1 := decimal.NewFromString(args[1])
		price, err2 := decimal.NewFromString(args[2])
		if err1 != nil || err2 != nil {
			return fmt.Errorf("%w: %s", errUsage, u.help)
		}
		return d.Purchase(domain.OperationParams{Item: args[0], Amount: amount, Price: price})
	case "mint":
		amount, err := decimal.NewFromString(args[1])
		if err != nil {
			return fmt.Errorf("%w: %s", errUsage, u.help)
		}
		return d.Mint(domain.OperationParams{Item: args[0], Amount: amount})
	case "transact":
		price, err := decimal.NewFromString(args[1])
		if err != nil {
			return fmt.Errorf("%w: %s", errUsage, u.help)
		}
		return d.Transact(domain.OperationParams{Item: args[0], Price: price})
	case "trade":
		return d.Trade(domain.OperationParams{ListingID: args[0]})
	case "deposit":
		amount, err := decimal.NewFromString(args[1])
		if err != nil {
			return fmt.Errorf("%w: %s", errUsage, u.help)
		}
		return d.Deposit(domain.OperationParams{Item: args[0], Amount: amount})
	case "save":
		return d.Save()
	case "refresh":
		return d.Refresh()
	case "retry":
		return d.Retry()
	case "ack":
		return d.Acknowledge()
	case "continue":
		return d.Continue()
	case "state":
		return printState(d.View(), out)
	case "help":
		for _, n := range sortedCommands() {
			fmt.Fprintln(out, commands[n].help)
		}
		return nil
	case "quit":
		return errQuit
	}
	return fmt.Errorf("%w: %s", errUnknownCommand, name)
}

func play(d driver, actionType domain.ActionType, payload interface{}) error {
	_, err := d.Play(actionType, payload)
	return err
}

func parseCoordinates(x, y string) (domain.Coordinates, error) {
	cx, err := strconv.Atoi(x)
	if err != nil {
		return domain.Coordinates{}, err
	}
	cy, err := strconv.Atoi(y)
	if err != nil {
		return domain.Coordinates{}, err
	}
	return domain.Coordinates{X: cx, Y: cy}, nil
}

func printState(v session.View, out io.Writer) error {
	fmt.Fprintf(out, "state=%s version=%d pending=%d in_flight=%d", v.State, v.Version, v.Pending, v.InFlight)
	if v.ErrorCode != "" {
		fmt.Fprintf(out, " error=%s", v.ErrorCode)
	}
	if v.Operation != "" {
		fmt.Fprintf(out, " operation=%s", v.Operation)
	}
	if v.Outcome != "" {
		fmt.Fprintf(out, " outcome=%s", v.Outcome)
	}
	fmt.Fprintln(out)

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v.Snapshot)
}

func sortedCommands() []string {
	names := make([]string, 0, len(commands))
	for n := range commands {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
