package main

import (
	"anonpair/backend/internal/chathub"
	"anonpair/backend/internal/config"
	"anonpair/backend/internal/storage"
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"text/tabwriter"
	"time"
)

const usage = `Usage: admin <command> [args]

Commands:
  queue                         list queue entries
  sessions                      list active chat sessions
  tick                          run one match tick now
  kick <user_id>                remove a user; their partner is requeued
  ban <user_id> [duration_h]    ban a user, forever when no duration is given
  unban <user_id>               lift a ban`

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	cfg, err := config.LoadStores()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx := context.Background()
	s, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to connect: %v", err)
	}
	defer s.Close()

	if err := run(ctx, s, cfg, os.Args[1], os.Args[2:]); err != nil {
		s.Close()
		log.Fatalf("Error: %v", err)
	}
}

func run(ctx context.Context, s *storage.Service, cfg *config.Config, command string, args []string) error {
	switch command {
	case "queue":
		return listQueue(ctx, s)
	case "sessions":
		return listSessions(ctx, s)
	case "tick":
		result, err := chathub.NewMatcherService(s, cfg.MatchInterval).Tick(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Created %d session(s), %d user(s) left waiting.\n", len(result.Sessions), result.Waiting)
		return nil
	case "kick":
		if len(args) != 1 {
			return fmt.Errorf("usage: admin kick <user_id>")
		}
		result, err := chathub.NewLeaveCoordinator(s).FullLeave(ctx, args[0])
		if err != nil {
			return err
		}
		if result.WasMatched {
			fmt.Printf("User %s removed from chat %s; %s requeued.\n", args[0], result.ChatID, result.PartnerID)
		} else {
			fmt.Printf("User %s removed from the queue.\n", args[0])
		}
		return nil
	case "ban":
		if len(args) < 1 || len(args) > 2 {
			return fmt.Errorf("usage: admin ban <user_id> [duration_in_hours]")
		}
		var ttl time.Duration
		if len(args) == 2 {
			hours, err := strconv.Atoi(args[1])
			if err != nil || hours < 0 {
				return fmt.Errorf("invalid duration %q: provide a non-negative integer", args[1])
			}
			ttl = time.Duration(hours) * time.Hour
		}
		if err := s.BanUser(ctx, args[0], ttl); err != nil {
			return err
		}
		fmt.Printf("User %s has been banned.\n", args[0])
		return nil
	case "unban":
		if len(args) != 1 {
			return fmt.Errorf("usage: admin unban <user_id>")
		}
		if err := s.UnbanUser(ctx, args[0]); err != nil {
			return err
		}
		fmt.Printf("User %s has been unbanned.\n", args[0])
		return nil
	}
	return fmt.Errorf("unknown command %q\n\n%s", command, usage)
}

func listQueue(ctx context.Context, s *storage.Service) error {
	entries, err := s.ListQueue(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "USER\tSTATE\tJOINED")
	for _, e := range entries {
		state := "matched"
		if e.Available {
			state = "waiting"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", e.UserID, state, e.JoinedAt.Format(time.RFC3339))
	}
	return w.Flush()
}

func listSessions(ctx context.Context, s *storage.Service) error {
	sessions, err := s.ListSessions(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CHAT\tUSER_A\tUSER_B\tSTARTED")
	for _, ses := range sessions {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", ses.ChatID, ses.UserAID, ses.UserBID, ses.CreatedAt.Format(time.RFC3339))
	}
	return w.Flush()
}
