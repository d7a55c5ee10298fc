package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/trezcool/mwalimu/core"
	"github.com/trezcool/mwalimu/core/offline"
)

const defaultBatchSize = 50

var (
	readFileFunc = os.ReadFile // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	conf      *core.Config
	logger    core.Logger
	queue     offline.Queue
	deliverer offline.Deliverer
	out       io.Writer
}

func (cli *commandLine) printf(format string, args ...interface{}) {
	var out io.Writer = os.Stdout
	if cli.out != nil {
		out = cli.out
	}
	_, _ = fmt.Fprintf(out, format, args...)
}

func (cli *commandLine) printUsage() {
	cli.printf("Usage:\n")
	cli.printf("  run [-batch N] - deliver pending submissions on the configured schedule until stopped\n")
	cli.printf("  once [-batch N] - deliver pending submissions once\n")
	cli.printf("  enqueue -kind lesson|grade -teacher ID [-student ID] -file PAYLOAD.json - queue a submission\n")
	cli.printf("  pending - list pending submissions\n")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	runCmd := flag.NewFlagSet("run", flag.ContinueOnError)
	runBatch := runCmd.Int("batch", defaultBatchSize, "The maximum number of submissions delivered per run.")

	onceCmd := flag.NewFlagSet("once", flag.ContinueOnError)
	onceBatch := onceCmd.Int("batch", defaultBatchSize, "The maximum number of submissions delivered.")

	enqueueCmd := flag.NewFlagSet("enqueue", flag.ContinueOnError)
	enqueueKind := enqueueCmd.String("kind", "", "The submission kind: lesson or grade.")
	enqueueTeacher := enqueueCmd.Int("teacher", 0, "The ID of the teacher the submission belongs to.")
	enqueueStudent := enqueueCmd.Int("student", 0, "The ID of the graded student (grade only).")
	enqueueFile := enqueueCmd.String("file", "", "The JSON file holding the request body.")

	ctx := context.Background()

	switch args[1] {
	case "run":
		if err := runCmd.Parse(args[2:]); err != nil {
			return err
		}
		sched, err := newScheduler(cli.conf.Sync.Schedule, offline.NewSyncer(cli.queue, cli.deliverer, cli.logger, *runBatch), cli.logger)
		if err != nil {
			return err
		}
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
		sched.start()
		sig := <-shutdown
		cli.logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))
		sched.stop()
		return nil
	case "once":
		if err := onceCmd.Parse(args[2:]); err != nil {
			return err
		}
		res, err := offline.NewSyncer(cli.queue, cli.deliverer, cli.logger, *onceBatch).Run(ctx)
		if err != nil {
			return err
		}
		cli.printf("delivered: %d, rejected: %d, kept: %d\n", res.Delivered, res.Rejected, res.Kept)
		return nil
	case "enqueue":
		if err := enqueueCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *enqueueKind == "" || *enqueueTeacher <= 0 || *enqueueFile == "" {
			enqueueCmd.Usage()
			return errHelp
		}
		payload, err := readFileFunc(*enqueueFile)
		if err != nil {
			return err
		}
		return cli.enqueue(ctx, offline.Kind(*enqueueKind), *enqueueTeacher, *enqueueStudent, payload)
	case "pending":
		return cli.pending(ctx)
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) enqueue(ctx context.Context, kind offline.Kind, teacherID, studentID int, payload []byte) error {
	// a submission nobody can authenticate would sit in the queue forever
	if _, ok := cli.conf.Sync.Tokens[teacherID]; !ok {
		return core.NewValidationError(nil, core.FieldError{
			Field: "teacher",
			Error: fmt.Sprintf("no API token configured for teacher %d", teacherID),
		})
	}
	s, err := offline.NewSubmission(kind, teacherID, studentID, payload)
	if err != nil {
		return err
	}
	if err = cli.queue.Enqueue(ctx, s); err != nil {
		return err
	}
	cli.printf("queued %s submission %s\n", s.Kind, s.ID)
	return nil
}

func (cli *commandLine) pending(ctx context.Context) error {
	subs, err := cli.queue.Pending(ctx, 0)
	if err != nil {
		return err
	}
	for _, s := range subs {
		cli.printf("%s\t%s\t%s\tattempts=%d\t%s\n", s.ID, s.Kind, s.Path(), s.Attempts, s.QueuedAt.Format("2006-01-02T15:04:05Z07:00"))
	}
	cli.printf("%d pending\n", len(subs))
	return nil
}
