// Package scheduler runs the background question and answer generation workers
package scheduler

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/brandaion/platform/app/services"
	"github.com/brandaion/platform/config"
	"github.com/brandaion/platform/models"
	"github.com/brandaion/platform/repository"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/gorm"
)

var (
	constructsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_constructs_processed_total",
			Help: "Constructs picked up by the question worker, partitioned by outcome",
		},
		[]string{"outcome"},
	)

	questionsGenerated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pipeline_questions_generated_total",
			Help: "Questions parsed out of completion responses and stored",
		},
	)

	answersGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_answers_generated_total",
			Help: "Answer generation attempts, partitioned by outcome",
		},
		[]string{"outcome"},
	)
)

// GenerationScheduler drives the two background workers: question generation
// for claimed constructs and answer generation for fully approved batches.
type GenerationScheduler struct {
	constructRepo repository.FAQConstructRepository
	questionRepo  repository.QuestionRepository
	completion    services.CompletionClient
	db            *gorm.DB
	logger        *log.Logger

	questionInterval time.Duration
	answerInterval   time.Duration
	claimLimit       int

	// triggerCh carries batch IDs whose review just completed so answers
	// start without waiting for the next tick
	triggerCh chan uuid.UUID
}

// NewGenerationScheduler creates a new generation scheduler
func NewGenerationScheduler(
	constructRepo repository.FAQConstructRepository,
	questionRepo repository.QuestionRepository,
	completion services.CompletionClient,
	db *gorm.DB,
	cfg config.SchedulerConfig,
	logCfg config.LoggingConfig,
) *GenerationScheduler {
	questionInterval := cfg.QuestionInterval
	if questionInterval <= 0 {
		questionInterval = time.Minute
	}
	answerInterval := cfg.AnswerInterval
	if answerInterval <= 0 {
		answerInterval = time.Minute
	}
	claimLimit := cfg.ClaimLimit
	if claimLimit <= 0 {
		claimLimit = 20
	}

	s := &GenerationScheduler{
		constructRepo:    constructRepo,
		questionRepo:     questionRepo,
		completion:       completion,
		db:               db,
		questionInterval: questionInterval,
		answerInterval:   answerInterval,
		claimLimit:       claimLimit,
		triggerCh:        make(chan uuid.UUID, 64),
	}
	s.initLogger(cfg.LogDir, logCfg)

	return s
}

// initLogger configures a logger that writes to both stdout and a rotating
// file under the scheduler's log directory
func (s *GenerationScheduler) initLogger(logDir string, logCfg config.LoggingConfig) {
	if logDir == "" {
		logDir = "data"
	}

	rotator := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, "scheduler.log"),
		MaxSize:    logCfg.MaxSize,
		MaxBackups: logCfg.MaxBackups,
		MaxAge:     logCfg.MaxAge,
		Compress:   logCfg.Compress,
	}
	mw := io.MultiWriter(os.Stdout, rotator)
	// log.Logger is goroutine-safe; include timestamps with microseconds and UTC
	s.logger = log.New(mw, "scheduler ", log.LstdFlags|log.Lmicroseconds|log.LUTC)
}

// TriggerBatch requests answer generation for a fully approved batch.
// Non-blocking; a full channel is fine because the periodic sweep picks
// the batch up on the next tick anyway.
func (s *GenerationScheduler) TriggerBatch(batchID uuid.UUID) {
	select {
	case s.triggerCh <- batchID:
	default:
	}
}

// Start launches both worker loops in background goroutines and returns a stop function
func (s *GenerationScheduler) Start(parent context.Context) func() {
	ctx, cancel := context.WithCancel(parent)

	go func() {
		ticker := time.NewTicker(s.questionInterval)
		defer ticker.Stop()

		s.runQuestionTick(ctx)

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.runQuestionTick(ctx)
			}
		}
	}()

	go s.runAnswerWorker(ctx)

	return cancel
}

// runQuestionTick claims pending constructs and generates questions for each.
// One construct's failure never blocks the others. Claims orphaned by a
// crashed worker surface here again once they go stale.
func (s *GenerationScheduler) runQuestionTick(ctx context.Context) {
	pending, err := s.constructRepo.ListPendingGeneration(ctx, s.claimLimit)
	if err != nil {
		s.logger.Printf("scheduler: list pending constructs failed: %v", err)
		return
	}
	if len(pending) == 0 {
		return
	}
	s.logger.Printf("scheduler: %d constructs pending question generation", len(pending))

	for _, construct := range pending {
		c := construct
		go func() {
			if err := s.processConstruct(ctx, c); err != nil {
				s.logger.Printf("scheduler: process construct id=%d batch=%s failed: %v", c.ID, c.BatchID, err)
			}
		}()
	}
}

// processConstruct claims one construct, calls the completion provider, and
// stores the parsed questions
func (s *GenerationScheduler) processConstruct(ctx context.Context, construct *models.FAQConstruct) error {
	claimed, err := s.constructRepo.ClaimGenerating(ctx, construct.ID)
	if err != nil {
		return fmt.Errorf("claim: %w", err)
	}
	if !claimed {
		// Another worker tick got here first
		return nil
	}

	prompt := buildQuestionPrompt(construct.Snapshot, construct.PairCount)

	response, err := s.completion.Complete(ctx, prompt)
	if err != nil {
		constructsProcessed.WithLabelValues("failed").Inc()
		if failErr := s.constructRepo.FailGeneration(ctx, construct.ID, prompt, err.Error()); failErr != nil {
			return fmt.Errorf("record failure: %w", failErr)
		}
		return fmt.Errorf("completion: %w", err)
	}

	lines := services.ParseCompletionLines(response)
	if len(lines) == 0 {
		constructsProcessed.WithLabelValues("failed").Inc()
		if failErr := s.constructRepo.FailGeneration(ctx, construct.ID, prompt, "completion returned no usable questions"); failErr != nil {
			return fmt.Errorf("record failure: %w", failErr)
		}
		return fmt.Errorf("completion returned no usable questions for batch %s", construct.BatchID)
	}
	if len(lines) > construct.PairCount {
		lines = lines[:construct.PairCount]
	}

	questions := make([]*models.Question, 0, len(lines))
	for _, text := range lines {
		questions = append(questions, &models.Question{
			ConstructID:  construct.ID,
			BatchID:      construct.BatchID,
			QuestionText: text,
			AnswerStatus: models.AnswerStatusPending,
			ReviewStatus: models.ReviewStatusPending,
		})
	}

	if err := repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		if err := s.constructRepo.CompleteGeneration(txCtx, construct.ID, prompt, response); err != nil {
			return err
		}
		return s.questionRepo.SaveBatch(txCtx, questions)
	}); err != nil {
		return fmt.Errorf("store questions: %w", err)
	}

	constructsProcessed.WithLabelValues("completed").Inc()
	questionsGenerated.Add(float64(len(questions)))
	s.logger.Printf("scheduler: generated %d questions for batch %s", len(questions), construct.BatchID)
	return nil
}

// runAnswerWorker answers approved questions. Review completion pushes batch
// IDs onto the trigger channel; a periodic sweep catches anything missed.
func (s *GenerationScheduler) runAnswerWorker(ctx context.Context) {
	ticker := time.NewTicker(s.answerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case batchID := <-s.triggerCh:
			s.answerBatch(ctx, batchID)
		case <-ticker.C:
			batchIDs, err := s.questionRepo.ListBatchesAwaitingAnswers(ctx, s.claimLimit)
			if err != nil {
				s.logger.Printf("scheduler: list batches awaiting answers failed: %v", err)
				continue
			}
			for _, batchID := range batchIDs {
				s.answerBatch(ctx, batchID)
			}
		}
	}
}

// answerBatch generates answers for every approved, unanswered question in
// the batch. A failed question stays pending and is retried on a later
// sweep; successes are committed one at a time.
func (s *GenerationScheduler) answerBatch(ctx context.Context, batchID uuid.UUID) {
	construct, err := s.constructRepo.ByBatchID(ctx, batchID)
	if err != nil {
		s.logger.Printf("scheduler: load construct for batch %s failed: %v", batchID, err)
		return
	}
	if construct == nil {
		s.logger.Printf("scheduler: no construct for batch %s", batchID)
		return
	}

	questions, err := s.questionRepo.ListUnansweredApproved(ctx, batchID)
	if err != nil {
		s.logger.Printf("scheduler: list unanswered questions for batch %s failed: %v", batchID, err)
		return
	}
	if len(questions) == 0 {
		return
	}
	s.logger.Printf("scheduler: answering %d questions for batch %s", len(questions), batchID)

	for _, question := range questions {
		prompt := buildAnswerPrompt(construct.Snapshot, question.QuestionText)

		answer, err := s.completion.Complete(ctx, prompt)
		if err != nil {
			answersGenerated.WithLabelValues("failed").Inc()
			if recErr := s.questionRepo.RecordAnswerError(ctx, question.ID, err.Error()); recErr != nil {
				s.logger.Printf("scheduler: record answer error for question id=%d failed: %v", question.ID, recErr)
			}
			continue
		}

		answer = strings.TrimSpace(answer)
		if answer == "" {
			answersGenerated.WithLabelValues("failed").Inc()
			if recErr := s.questionRepo.RecordAnswerError(ctx, question.ID, "completion returned an empty answer"); recErr != nil {
				s.logger.Printf("scheduler: record answer error for question id=%d failed: %v", question.ID, recErr)
			}
			continue
		}

		if err := s.questionRepo.CompleteAnswer(ctx, question.ID, answer, nil); err != nil {
			s.logger.Printf("scheduler: store answer for question id=%d failed: %v", question.ID, err)
			continue
		}
		answersGenerated.WithLabelValues("completed").Inc()
	}
}

// buildQuestionPrompt renders the question generation prompt from the
// construct's configuration snapshot
func buildQuestionPrompt(snapshot models.ConfigSnapshot, pairCount int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate %d frequently asked questions about the product %q from the brand %q by %q.\n",
		pairCount, snapshot.ProductName, snapshot.BrandName, snapshot.OrganizationName)
	fmt.Fprintf(&b, "Write for the persona %q, audience %q, in the %q market.\n",
		snapshot.PersonaName, snapshot.AudienceName, snapshot.MarketName)
	b.WriteString("Return one question per line, numbered.")
	return b.String()
}

// buildAnswerPrompt renders the answer generation prompt for one approved question
func buildAnswerPrompt(snapshot models.ConfigSnapshot, questionText string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Answer the following question about the product %q from the brand %q by %q.\n",
		snapshot.ProductName, snapshot.BrandName, snapshot.OrganizationName)
	fmt.Fprintf(&b, "Write for the persona %q, audience %q, in the %q market. Answer concisely in plain text.\n",
		snapshot.PersonaName, snapshot.AudienceName, snapshot.MarketName)
	fmt.Fprintf(&b, "Question: %s", questionText)
	return b.String()
}
