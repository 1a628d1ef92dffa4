package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/mamadbah2/lirio/internal/domain/models"
)

// ErrInvalidArguments indicates the command payload could not be parsed.
var ErrInvalidArguments = errors.New("invalid command arguments")

// ErrUnsupportedCommand indicates we do not support the requested command.
var ErrUnsupportedCommand = errors.New("unsupported command")

// HelpText lists the chat commands.
const HelpText = `Commands:
/eggs <pen> <qty>
/birth <pen> <qty>, /purchase <pen> <qty>
/sale <pen> <qty>, /death <pen> <qty>
/feed add <type> <kg>, /feed use <type> [kg]
/veg <type> <kg> <price per kg>
/stock, /summary`

// FarmOperations is the slice of the farm service the dispatcher drives.
type FarmOperations interface {
	ResolvePen(ctx context.Context, ref string) (models.AnimalPen, error)
	Move(ctx context.Context, penID string, qty int, kind models.TransactionType, by string) (models.AnimalPen, models.AnimalTransaction, error)
	RecordEggs(ctx context.Context, penID string, qty int, by string) (models.EggProduction, error)
	RecordVegetables(ctx context.Context, vegType string, kg, price float64, by string) (models.VegetableProduction, error)
	AddFeedStock(ctx context.Context, feedType string, kg float64) (models.FeedInventory, error)
	RecordConsumption(ctx context.Context, feedType string, kg float64) (models.FeedInventory, error)
}

// ReportingAdapter defines the reporting functions required by the dispatcher.
type ReportingAdapter interface {
	StockSummary(ctx context.Context) (string, error)
	DailySummary(ctx context.Context, day string) (string, error)
}

// Dispatcher executes parsed commands against the farm.
type Dispatcher interface {
	HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error)
}

// Service implements the Dispatcher interface.
type Service struct {
	farm      FarmOperations
	reporting ReportingAdapter
	logger    *zap.Logger
}

// NewService constructs a command dispatcher.
func NewService(farm FarmOperations, reporting ReportingAdapter, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		farm:      farm,
		reporting: reporting,
		logger:    logger,
	}
}

// HandleCommand applies the command on behalf of sender and returns the reply text.
func (s *Service) HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error) {
	s.logger.Debug("dispatching command", zap.String("command", string(cmd.Type)), zap.String("sender", sender), zap.Strings("args", cmd.Args))

	switch cmd.Type {
	case models.CommandEggs:
		penRef, qty, err := splitRefAndInt(cmd.Args)
		if err != nil {
			return "", err
		}
		pen, err := s.farm.ResolvePen(ctx, penRef)
		if err != nil {
			return "", err
		}
		rec, err := s.farm.RecordEggs(ctx, pen.ID, qty, sender)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Egg record saved for %s on %s: %d eggs.", pen.Name, rec.Date, rec.Quantity), nil

	case models.CommandBirth, models.CommandPurchase, models.CommandSale, models.CommandDeath:
		kind, _ := cmd.TransactionType()
		penRef, qty, err := splitRefAndInt(cmd.Args)
		if err != nil {
			return "", err
		}
		pen, err := s.farm.ResolvePen(ctx, penRef)
		if err != nil {
			return "", err
		}
		updated, _, err := s.farm.Move(ctx, pen.ID, qty, kind, sender)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s of %d recorded for %s. Now %d animals.", movementLabel(kind), qty, updated.Name, updated.CurrentCount), nil

	case models.CommandFeed:
		return s.handleFeed(ctx, cmd.Args)

	case models.CommandVeg:
		if len(cmd.Args) < 3 {
			return "", ErrInvalidArguments
		}
		n := len(cmd.Args)
		kg, err := strconv.ParseFloat(cmd.Args[n-2], 64)
		if err != nil {
			return "", ErrInvalidArguments
		}
		price, err := strconv.ParseFloat(cmd.Args[n-1], 64)
		if err != nil {
			return "", ErrInvalidArguments
		}
		rec, err := s.farm.RecordVegetables(ctx, strings.Join(cmd.Args[:n-2], " "), kg, price, sender)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Harvest saved: %.2f kg of %s worth %.2f MZN.", rec.WeightKg, rec.VegetableType, rec.Value()), nil

	case models.CommandStock:
		if s.reporting == nil {
			return "", ErrUnsupportedCommand
		}
		return s.reporting.StockSummary(ctx)

	case models.CommandSummary:
		if s.reporting == nil {
			return "", ErrUnsupportedCommand
		}
		day := ""
		if len(cmd.Args) > 0 {
			day = cmd.Args[0]
		}
		return s.reporting.DailySummary(ctx, day)

	case models.CommandHelp:
		return HelpText, nil

	default:
		return "", ErrUnsupportedCommand
	}
}

func (s *Service) handleFeed(ctx context.Context, args []string) (string, error) {
	if len(args) < 2 {
		return "", ErrInvalidArguments
	}
	action := strings.ToLower(args[0])
	rest := args[1:]

	var kg float64
	if n := len(rest); n > 1 {
		if v, err := strconv.ParseFloat(rest[n-1], 64); err == nil {
			kg = v
			rest = rest[:n-1]
		}
	}
	feedType := strings.Join(rest, " ")

	switch action {
	case "add":
		if kg == 0 {
			return "", ErrInvalidArguments
		}
		feed, err := s.farm.AddFeedStock(ctx, feedType, kg)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Feed stock for %s is now %.2f kg.", feed.FeedType, feed.CurrentStockKg), nil
	case "use":
		feed, err := s.farm.RecordConsumption(ctx, feedType, kg)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Consumption recorded. %s has %.2f kg left.", feed.FeedType, feed.CurrentStockKg), nil
	default:
		return "", ErrInvalidArguments
	}
}

// splitRefAndInt reads "<ref words...> <n>".
func splitRefAndInt(args []string) (string, int, error) {
	if len(args) < 2 {
		return "", 0, ErrInvalidArguments
	}
	n, err := strconv.Atoi(args[len(args)-1])
	if err != nil {
		return "", 0, ErrInvalidArguments
	}
	return strings.Join(args[:len(args)-1], " "), n, nil
}

func movementLabel(kind models.TransactionType) string {
	switch kind {
	case models.TransactionBirth:
		return "Birth"
	case models.TransactionPurchase:
		return "Purchase"
	case models.TransactionSale:
		return "Sale"
	default:
		return "Death"
	}
}
