package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chemthink/chemthink/internal/app"
	"github.com/chemthink/chemthink/internal/practiceapi"
	"github.com/chemthink/chemthink/internal/problem"
	"github.com/chemthink/chemthink/internal/screen"
	"github.com/chemthink/chemthink/internal/screens/practice"
	"github.com/chemthink/chemthink/internal/screens/topics"
	"github.com/chemthink/chemthink/internal/store"
	"github.com/chemthink/chemthink/internal/tracker"
)

var practiceCmd = &cobra.Command{
	Use:   "practice",
	Short: "Start a practice session (default command)",
	Long: `Open the topic picker, or go straight to a topic with --topic.

Problems and grading come from the practice service at api_url. When the
service is unreachable, seed problems and local grading are used instead.`,
	RunE: runPractice,
}

func init() {
	addPracticeFlags(practiceCmd)
}

func addPracticeFlags(c *cobra.Command) {
	c.Flags().String("primitive", "", "Primitive to practice, e.g. DIRECTION")
	c.Flags().String("topic", "", "Topic to practice, e.g. bond_angles")
	c.Flags().Bool("offline", false, "Use seed problems and local grading only")
	c.Flags().Int("target", 0, "Consecutive correct answers needed for mastery")
}

// sessionFactory builds trackers wired to the practice service (unless
// offline) and to the store.
type sessionFactory struct {
	env *env
}

func (f sessionFactory) newTracker(primitive, topic string) (*tracker.Tracker, error) {
	cfg, log := f.env.cfg, f.env.log
	tc := tracker.Config{
		Primitive:     primitive,
		Topic:         topic,
		MasteryTarget: cfg.MasteryTarget,
		Recorder:      store.NewPracticeRecorder(f.env.store.PracticeRepo(), f.env.studentID),
		Logger:        log,
		OnMastery: func(ev tracker.MasteryEvent) {
			log.Info("mastery-complete",
				zap.String("primitive", ev.Primitive),
				zap.String("topic", ev.Topic),
				zap.Int("attempts", ev.Attempts),
				zap.Int("streak", ev.Streak))
		},
	}
	if !cfg.Offline {
		client := practiceapi.NewClient(cfg.APIURL,
			practiceapi.WithTimeout(cfg.RequestTimeout),
			practiceapi.WithLogger(log))
		tc.Remote = &practiceapi.Source{Client: client}
		tc.Grader = &practiceapi.Grader{Client: client}
	}
	return tracker.New(tc)
}

func runPractice(cmd *cobra.Command, args []string) error {
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	if offline, _ := cmd.Flags().GetBool("offline"); offline {
		e.cfg.Offline = true
	}
	if target, _ := cmd.Flags().GetInt("target"); target > 0 {
		e.cfg.MasteryTarget = target
	}

	ctx := cmdContext(cmd)
	factory := sessionFactory{env: e}

	var root screen.Screen
	if cmd.Flags().Changed("primitive") || cmd.Flags().Changed("topic") {
		primitive, topic, err := pickTopic(cmd, e.cfg.Primitive, e.cfg.Topic)
		if err != nil {
			return err
		}
		tr, err := factory.newTracker(primitive, topic)
		if err != nil {
			return err
		}
		root = practice.New(practice.Options{Tracker: tr, Root: true, Context: ctx, Logger: e.log})
	} else {
		start := func(primitive, topic string) (screen.Screen, error) {
			tr, err := factory.newTracker(primitive, topic)
			if err != nil {
				return nil, err
			}
			return practice.New(practice.Options{Tracker: tr, Context: ctx, Logger: e.log}), nil
		}
		progress := func(ctx context.Context) ([]store.Progress, error) {
			return e.store.PracticeRepo().ListProgress(ctx, e.studentID)
		}
		root = topics.New(start, progress, shortID(e.studentID))
	}

	e.log.Info("starting practice",
		zap.String("student_id", e.studentID),
		zap.Bool("offline", e.cfg.Offline),
		zap.String("api_url", e.cfg.APIURL))
	return app.Run(ctx, root)
}

// pickTopic resolves --primitive and --topic against the catalog. A
// primitive without a topic starts at its first topic.
func pickTopic(cmd *cobra.Command, defPrimitive, defTopic string) (string, string, error) {
	primFlag, _ := cmd.Flags().GetString("primitive")
	topic, _ := cmd.Flags().GetString("topic")

	name := defPrimitive
	if primFlag != "" {
		name = primFlag
	}
	p, err := problem.ParsePrimitive(name)
	if err != nil {
		return "", "", err
	}
	if topic == "" {
		if primFlag == "" {
			topic = defTopic
		} else {
			topic = problem.Topics(p)[0]
		}
	}
	if err := problem.ValidateTopic(p, topic); err != nil {
		return "", "", fmt.Errorf("%w (see `chemthink topics`)", err)
	}
	return string(p), topic, nil
}

// shortID trims the generated student ID for the header.
func shortID(id string) string {
	if len(id) > 16 {
		return id[:16] + "…"
	}
	return id
}
