// Package main provides the runbridge CLI: publish demo runs, tail a topic
// in the terminal UI, manage topics and inspect the archive.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"runbridge/src/broker"
	"runbridge/src/codec"
	"runbridge/src/config"
	"runbridge/src/consumer"
	"runbridge/src/documents"
	"runbridge/src/logger"
	"runbridge/src/pipeline"
	"runbridge/src/publisher"
	"runbridge/src/store"
	"runbridge/src/tui"
)

var appConfig *config.Config

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "runbridge",
	Short: "runbridge - a bridge between document streams and Kafka",
	Long: `runbridge moves data acquisition documents (start, descriptor, event,
stop) across a Kafka-compatible broker and back.

Configuration is environment-driven:
  RUNBRIDGE_BROKERS       bootstrap servers, comma separated (required)
  RUNBRIDGE_TOPIC         document topic (required)
  RUNBRIDGE_GROUP_ID      consumer group id (optional)
  RUNBRIDGE_CODEC         wire format, json (default) or msgpack
  RUNBRIDGE_POSTGRES_DSN  archive database, required for 'runs'`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// The demo is self-contained and needs no environment.
		if cmd.Name() == "demo" {
			return
		}
		var err error
		appConfig, err = config.LoadFromEnv()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
			os.Exit(1)
		}
	},
}

// demoCmd runs the whole bridge in one process over the in-memory broker:
// a publisher emitting a synthetic run and the terminal UI consuming it.
var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run a self-contained in-memory demo",
	Run: func(cmd *cobra.Command, args []string) {
		p, err := pipeline.NewLocalPipeline(&pipeline.Config{Topic: "demo"})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create pipeline: %v\n", err)
			os.Exit(1)
		}
		defer p.Close()

		pub, err := p.Publisher()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create publisher: %v\n", err)
			os.Exit(1)
		}

		client, err := p.ConsumerClient()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create consumer: %v\n", err)
			os.Exit(1)
		}

		feed := make(chan tui.DocumentMsg, 64)
		cons, err := consumer.NewDocumentConsumer(
			consumer.Config{Topics: []string{"demo"}},
			client, p.Codec(), tui.HandlerFeeding(feed), logger.NewSilentLogger())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create document consumer: %v\n", err)
			os.Exit(1)
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		go func() {
			if err := cons.Start(consumer.UntilContextDone(ctx)); err != nil {
				fmt.Fprintf(os.Stderr, "Consumer error: %v\n", err)
			}
			close(feed)
		}()

		// Emit a slow synthetic run so the stream is visible live.
		go func() {
			runUID := fmt.Sprintf("demo-%d", time.Now().Unix())
			pub.Publish(documents.NameStart, documents.Document{"uid": runUID})
			pub.Publish(documents.NameDescriptor, documents.Document{"run_start": runUID})
			for i := 1; i <= 20; i++ {
				select {
				case <-ctx.Done():
					return
				case <-time.After(500 * time.Millisecond):
				}
				pub.Publish(documents.NameEvent, documents.Document{
					"seq_num": float64(i),
					"data":    map[string]any{"value": float64(i) * 1.5},
				})
			}
			pub.Publish(documents.NameStop, documents.Document{"run_start": runUID})
		}()

		prog := tea.NewProgram(tui.NewMonitorModel("demo", feed), tea.WithAltScreen())
		if _, err := prog.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "TUI error: %v\n", err)
			os.Exit(1)
		}
	},
}

var (
	publishEvents int
	publishKey    string
)

// publishCmd emits one synthetic run onto the configured topic.
var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish a synthetic run to the topic",
	Long: `Publish a complete synthetic run: a start document, one descriptor,
a number of events and a stop document. Useful for smoke-testing consumers.`,
	Run: func(cmd *cobra.Command, args []string) {
		cdc, err := codec.ByName(appConfig.Codec)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		pub, err := publisher.New(publisher.Config{
			Topic:            appConfig.Topic,
			BootstrapServers: appConfig.Brokers,
			Key:              publishKey,
			FlushOnStop:      true,
		}, cdc, logger.NewConsoleLogger())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create publisher: %v\n", err)
			os.Exit(1)
		}
		defer pub.Close()

		runUID := fmt.Sprintf("demo-%d", time.Now().Unix())
		if err := publishDemoRun(pub, runUID, publishEvents); err != nil {
			fmt.Fprintf(os.Stderr, "Publish failed: %v\n", err)
			os.Exit(1)
		}

		delivered, failed := pub.DeliveryStats()
		fmt.Printf("Published run %s (%d delivered, %d failed)\n", runUID, delivered, failed)
	},
}

func publishDemoRun(pub *publisher.Publisher, runUID string, events int) error {
	start := time.Now()
	if err := pub.Publish(documents.NameStart, documents.Document{
		"uid":  runUID,
		"time": float64(start.Unix()),
	}); err != nil {
		return err
	}
	if err := pub.Publish(documents.NameDescriptor, documents.Document{
		"uid":       runUID + "-descriptor",
		"run_start": runUID,
		"data_keys": map[string]any{"value": map[string]any{"dtype": "number"}},
	}); err != nil {
		return err
	}
	for i := 1; i <= events; i++ {
		if err := pub.Publish(documents.NameEvent, documents.Document{
			"seq_num": float64(i),
			"data":    map[string]any{"value": float64(i) * 1.5},
		}); err != nil {
			return err
		}
	}
	return pub.Publish(documents.NameStop, documents.Document{
		"run_start":   runUID,
		"exit_status": "success",
		"num_events":  map[string]any{"primary": float64(events)},
	})
}

// tailCmd follows the topic in the terminal UI.
var tailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Follow the document stream in a terminal UI",
	Run: func(cmd *cobra.Command, args []string) {
		cdc, err := codec.ByName(appConfig.Codec)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		client, err := broker.NewKafkaConsumer(appConfig.Brokers, appConfig.GroupID, "latest", nil, logger.NewSilentLogger())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create consumer: %v\n", err)
			os.Exit(1)
		}

		feed := make(chan tui.DocumentMsg, 64)
		cons, err := consumer.NewDocumentConsumer(
			consumer.Config{Topics: []string{appConfig.Topic}},
			client, cdc, tui.HandlerFeeding(feed), logger.NewSilentLogger())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create document consumer: %v\n", err)
			os.Exit(1)
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		pollErr := make(chan error, 1)
		go func() {
			pollErr <- cons.Start(consumer.UntilContextDone(ctx))
			close(feed)
		}()

		p := tea.NewProgram(tui.NewMonitorModel(appConfig.Topic, feed), tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "TUI error: %v\n", err)
			os.Exit(1)
		}

		cancel()
		// The poll loop only observes cancellation after a dispatched
		// message, so don't wait on it; just surface a fault that may
		// have ended it while the UI was up.
		select {
		case err := <-pollErr:
			if err != nil {
				fmt.Fprintf(os.Stderr, "Consumer error: %v\n", err)
				os.Exit(1)
			}
		default:
		}
	},
}

var (
	topicPartitions int32
	topicReplicas   int16
)

// topicsCmd groups topic administration.
var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "Manage broker topics",
}

var topicsCreateCmd = &cobra.Command{
	Use:   "create [topic...]",
	Short: "Create topics (defaults to the configured topic)",
	Run: func(cmd *cobra.Command, args []string) {
		withTopicAdmin(func(ctx context.Context, admin *broker.TopicAdmin, topics []string) error {
			return admin.CreateTopics(ctx, topicPartitions, topicReplicas, topics...)
		}, args, "created")
	},
}

var topicsDeleteCmd = &cobra.Command{
	Use:   "delete [topic...]",
	Short: "Delete topics (defaults to the configured topic)",
	Run: func(cmd *cobra.Command, args []string) {
		withTopicAdmin(func(ctx context.Context, admin *broker.TopicAdmin, topics []string) error {
			return admin.DeleteTopics(ctx, topics...)
		}, args, "deleted")
	},
}

func withTopicAdmin(op func(context.Context, *broker.TopicAdmin, []string) error, args []string, verb string) {
	topics := args
	if len(topics) == 0 {
		topics = []string{appConfig.Topic}
	}

	admin, err := broker.NewTopicAdmin(appConfig.Brokers, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create admin client: %v\n", err)
		os.Exit(1)
	}
	defer admin.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := op(ctx, admin, topics); err != nil {
		fmt.Fprintf(os.Stderr, "Topic operation failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Topics %s: %v\n", verb, topics)
}

// runsCmd groups archive queries.
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect archived runs",
}

var runsLimit int

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived runs, newest first",
	Run: func(cmd *cobra.Command, args []string) {
		withStore(func(ctx context.Context, st store.Store) error {
			runs, err := st.ListRuns(ctx, runsLimit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Println("No runs archived yet.")
				return nil
			}
			fmt.Printf("%s %s %s %s\n",
				tui.TruncateAndPad("RUN", 38, false),
				tui.TruncateAndPad("TOPIC", 20, false),
				tui.TruncateAndPad("DOCS", 6, false),
				"STATE")
			for _, r := range runs {
				state := "running"
				if r.Complete {
					state = "complete"
				}
				fmt.Printf("%s %s %s %s\n",
					tui.TruncateAndPad(r.UID, 38, true),
					tui.TruncateAndPad(r.Topic, 20, true),
					tui.TruncateAndPad(fmt.Sprintf("%d", r.DocumentCount), 6, false),
					state)
			}
			return nil
		})
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show [run-uid]",
	Short: "Print the document stream of a run",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		withStore(func(ctx context.Context, st store.Store) error {
			docs, err := st.GetRunDocuments(ctx, args[0])
			if err != nil {
				return err
			}
			if len(docs) == 0 {
				return fmt.Errorf("no documents archived for run %q", args[0])
			}
			for _, d := range docs {
				fmt.Printf("%s  %-12s %v\n", d.ReceivedAt.Format(time.RFC3339), d.Name, d.Doc)
			}
			return nil
		})
	},
}

func withStore(op func(context.Context, store.Store) error) {
	if appConfig.PostgresDSN == "" {
		fmt.Fprintln(os.Stderr, "ERROR: RUNBRIDGE_POSTGRES_DSN environment variable is required for runs commands")
		os.Exit(1)
	}

	st, err := store.NewPostgresStore(appConfig.PostgresDSN)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to Postgres: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := op(ctx, st); err != nil {
		fmt.Fprintf(os.Stderr, "Archive query failed: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	publishCmd.Flags().IntVar(&publishEvents, "events", 10, "number of event documents in the synthetic run")
	publishCmd.Flags().StringVar(&publishKey, "key", "", "Kafka message key for all published documents")
	topicsCreateCmd.Flags().Int32Var(&topicPartitions, "partitions", 1, "partition count for created topics")
	topicsCreateCmd.Flags().Int16Var(&topicReplicas, "replicas", 1, "replication factor for created topics")
	runsListCmd.Flags().IntVar(&runsLimit, "limit", 20, "max runs to list")

	topicsCmd.AddCommand(topicsCreateCmd, topicsDeleteCmd)
	runsCmd.AddCommand(runsListCmd, runsShowCmd)
	rootCmd.AddCommand(publishCmd, tailCmd, demoCmd, topicsCmd, runsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
