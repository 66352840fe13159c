package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/tbxark/convoform"
	"github.com/tbxark/convoform/agent"
	"github.com/tbxark/convoform/dialogue"
	"github.com/tbxark/convoform/indent"
	"github.com/tbxark/convoform/types"
)

var rootFlags struct {
	config string
	thread string
	debug  bool
}

var rootCmd = &cobra.Command{
	Use:          "dinner",
	Short:        "Take a dinner order through a conversation",
	SilenceUsage: true,
	RunE:         runDinner,
}

func init() {
	f := rootCmd.Flags()
	f.StringVar(&rootFlags.config, "config", "config.yaml", "Path to the YAML config")
	f.StringVar(&rootFlags.thread, "thread", "", "Resume this thread instead of starting a new one")
	f.BoolVar(&rootFlags.debug, "debug", false, "Log debug output")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runDinner(cmd *cobra.Command, _ []string) error {
	if rootFlags.debug {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}
	config, err := loadConfig(rootFlags.config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	ctx := cmd.Context()
	cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:  config.APIKey,
		Model:   config.Model,
		BaseURL: config.BaseURL,
	})
	if err != nil {
		return err
	}
	store, err := openStore(config)
	if err != nil {
		return err
	}
	detector, err := indent.NewToolBasedDetector(cm)
	if err != nil {
		return err
	}

	o, err := convoform.New(dinnerOrder(), cm,
		agent.WithStore(store),
		agent.WithRetention(agent.KeepSystemLastNTrimmer{N: config.KeepMessages}),
		agent.WithPromptOptions(dialogue.WithLang(config.Lang)),
		agent.WithTraitDetector(indent.NewFailbackDetector(detector, indent.NewKeywordDetector(map[string][]string{
			"allergic": {"allergy", "allergic", "intolerant"},
			"rushed":   {"hurry", "quick"},
		}))),
	)
	if err != nil {
		return err
	}

	thread := rootFlags.thread
	if thread == "" {
		thread = agent.NewThreadID()
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "thread: %s\n", thread)
	return chat(ctx, o, thread, cmd.InOrStdin(), out)
}

func openStore(config *Config) (agent.Cache[*agent.State], error) {
	switch config.Store.Kind {
	case "memory":
		return agent.NewMemoryCache[*agent.State](agent.StateCodec{}), nil
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: config.Store.Redis})
		return agent.NewRedisCache[*agent.State](client, agent.StateCodec{}, agent.DefaultCheckpointTTL, nil), nil
	case "sqlite":
		db, err := gorm.Open(sqlite.Open(config.Store.SQLite), &gorm.Config{})
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		return agent.NewGormCache[*agent.State](db, agent.StateCodec{})
	default:
		return nil, fmt.Errorf("unknown store kind %q", config.Store.Kind)
	}
}

func chat(ctx context.Context, o *convoform.Orchestrator, thread string, in io.Reader, out io.Writer) error {
	reader := bufio.NewReader(in)
	var input *string
	for {
		msg, err := o.Advance(ctx, thread, input)
		if err != nil {
			return err
		}
		if msg != nil {
			fmt.Fprintf(out, "\nwaiter: %s\n", msg.Content)
		}
		st, _, err := o.State(ctx, thread)
		if err != nil {
			return err
		}
		if st.Status == types.StatusTerminal {
			fmt.Fprintln(out, types.FormatRecord(st.Record))
			return nil
		}
		fmt.Fprint(out, "you: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return nil
		}
		line = strings.TrimSpace(line)
		input = &line
	}
}
