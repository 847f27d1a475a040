// Command cartctl drives the local cart mirror against the remote cart service.
//
//	cartctl show
//	cartctl reload
//	cartctl add <product> <price> <currency> <quantity>
//	cartctl update <product> <quantity>
//	cartctl delete <product>
//	cartctl clear
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/nikolayk812/cartmirror/internal/cartsync"
	"github.com/nikolayk812/cartmirror/internal/config"
	"github.com/nikolayk812/cartmirror/internal/db"
	"github.com/nikolayk812/cartmirror/internal/domain"
	"github.com/nikolayk812/cartmirror/internal/kvstore"
	"github.com/nikolayk812/cartmirror/internal/logger"
	"github.com/nikolayk812/cartmirror/internal/migrate"
	"github.com/nikolayk812/cartmirror/internal/port"
	"github.com/nikolayk812/cartmirror/internal/remote"
	"github.com/redis/go-redis/v9"
)

var errUsage = errors.New("usage: cartctl show|reload|add <product> <price> <currency> <qty>|update <product> <qty>|delete <product>|clear")

func main() {
	cfg := config.FromEnv()
	log := logger.New(logger.Options{Service: "cartctl", Env: cfg.AppEnv, Level: cfg.LogLevel, Output: os.Stderr})

	if err := run(context.Background(), cfg, log, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	client, err := remote.NewClient(remote.Options{
		BaseURL:            cfg.RemoteURL,
		Timeout:            cfg.RequestTimeout,
		BreakerMaxFailures: cfg.BreakerMaxFailures,
		BreakerOpenTimeout: cfg.BreakerOpenTimeout,
	})
	if err != nil {
		return fmt.Errorf("remote.NewClient: %w", err)
	}

	svc := cartsync.NewWithStore(client, store, cfg.KeyPrefix, log)

	if err := svc.Reload(ctx); err != nil {
		return err
	}

	if err := execute(ctx, svc, args); err != nil {
		return err
	}

	return printSnapshot(out, svc.Snapshot())
}

func execute(ctx context.Context, svc *cartsync.Service, args []string) error {
	cmd, rest := args[0], args[1:]

	switch {
	case (cmd == "show" || cmd == "reload") && len(rest) == 0:
		return nil
	case cmd == "add" && len(rest) == 4:
		price, err := domain.ParseMoney(rest[1], rest[2])
		if err != nil {
			return err
		}
		quantity, err := strconv.Atoi(rest[3])
		if err != nil {
			return fmt.Errorf("quantity[%s] is not a number", rest[3])
		}
		return svc.Add(ctx, rest[0], price, quantity)
	case cmd == "update" && len(rest) == 2:
		quantity, err := strconv.Atoi(rest[1])
		if err != nil {
			return fmt.Errorf("quantity[%s] is not a number", rest[1])
		}
		return svc.UpdateQuantity(ctx, rest[0], quantity)
	case cmd == "delete" && len(rest) == 1:
		return svc.Delete(ctx, rest[0])
	case cmd == "clear" && len(rest) == 0:
		return svc.Clear(ctx)
	default:
		return errUsage
	}
}

func printSnapshot(out io.Writer, snapshot domain.Snapshot) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

	fmt.Fprintln(w, "PRODUCT\tPRICE\tQTY")
	for _, item := range snapshot.Items {
		fmt.Fprintf(w, "%s\t%s\t%d\n", item.ProductID, item.Price, item.Quantity)
	}
	fmt.Fprintf(w, "TOTAL\t\t%d\n", snapshot.TotalItems)

	return w.Flush()
}

func openStore(ctx context.Context, cfg config.Config) (port.KVStore, func(), error) {
	switch cfg.KVBackend {
	case config.KVBackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("redis ping: %w", err)
		}
		return kvstore.NewRedis(client), func() { _ = client.Close() }, nil

	case config.KVBackendPostgres:
		pool, err := db.Connect(ctx, cfg.DBConnString)
		if err != nil {
			return nil, nil, fmt.Errorf("db.Connect: %w", err)
		}
		if err := migrate.Apply(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("migrate.Apply: %w", err)
		}
		return kvstore.NewPostgres(pool), pool.Close, nil

	default:
		return kvstore.NewMemory(), func() {}, nil
	}
}
