package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/SevereCloud/vksdk/v2/object"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vkrec/recommend-bot/internal/classifier"
	"github.com/vkrec/recommend-bot/internal/models"
	"github.com/vkrec/recommend-bot/internal/storage"
	"github.com/vkrec/recommend-bot/internal/vk"
)

// wallFetchConcurrency bounds the parallel wall requests of one analysis.
const wallFetchConcurrency = 8

// Social is the read side of the VK API the controller depends on.
type Social interface {
	Subscriptions(ctx context.Context, userID int64, sampleCap int) ([]int64, error)
	WallPosts(ctx context.Context, groupID int64, count int) ([]models.Post, error)
}

// Messenger delivers outbound messages.
type Messenger interface {
	Send(ctx context.Context, userID int64, text string, keyboard *object.MessagesKeyboard) error
}

type Config struct {
	AdminPassphrase    string
	SubscriptionSample int
	PostsPerGroup      int
	PageSize           int
}

// Controller dispatches inbound messages to command handlers. Safe for
// concurrent use; every piece of cross-message coordination state (the
// in-flight set, the greeted set, the labeling watermark) is owned here
// and guarded by a mutex.
type Controller struct {
	store      storage.Store
	social     Social
	messenger  Messenger
	classifier classifier.Classifier
	cfg        Config
	logger     *zap.Logger

	mu       sync.Mutex
	inFlight map[int64]struct{}
	greeted  map[int64]struct{}

	adminMu  sync.Mutex
	latestID int64
}

func NewController(store storage.Store, social Social, messenger Messenger, clf classifier.Classifier, cfg Config, logger *zap.Logger) *Controller {
	if cfg.SubscriptionSample <= 0 {
		cfg.SubscriptionSample = 100
	}
	if cfg.PostsPerGroup <= 0 {
		cfg.PostsPerGroup = 10
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 10
	}

	return &Controller{
		store:      store,
		social:     social,
		messenger:  messenger,
		classifier: clf,
		cfg:        cfg,
		logger:     logger,
		inFlight:   make(map[int64]struct{}),
		greeted:    make(map[int64]struct{}),
	}
}

// Init recomputes the labeling watermark from the curated catalog, so
// restarts never re-process already promoted candidates.
func (c *Controller) Init(ctx context.Context) error {
	return c.store.Do(ctx, func(uow storage.UnitOfWork) error {
		max, err := uow.MaxCuratedID()
		if err != nil {
			return err
		}
		c.adminMu.Lock()
		c.latestID = max
		c.adminMu.Unlock()
		return nil
	})
}

// HandleMessage is the single entry point, invoked once per inbound
// message event. Messages from a sender whose analysis is still running
// get a wait notice and are otherwise dropped.
func (c *Controller) HandleMessage(ctx context.Context, fromID int64, text string, payload string) {
	log := c.logger.With(
		zap.Int64("user_id", fromID),
		zap.String("trace_id", uuid.New().String()))

	if c.isInFlight(fromID) {
		c.send(ctx, log, fromID, msgPleaseWait, nil)
		return
	}

	intent := DecodeIntent(text, payload, c.cfg.AdminPassphrase)

	switch intent.Kind {
	case IntentStartAnalysis:
		c.handleStartAnalysis(ctx, log, fromID)
	case IntentShowRecommendation:
		c.handleShowRecommendation(ctx, log, fromID, intent.Page)
	case IntentAdminEnter:
		c.handleAdminEnter(ctx, log, fromID)
	case IntentDatasetFilter:
		c.handleDatasetFilter(ctx, log, fromID, intent)
	default:
		c.handleWelcome(ctx, log, fromID)
	}
}

func (c *Controller) handleWelcome(ctx context.Context, log *zap.Logger, fromID int64) {
	var hasSubjects bool
	err := c.store.Do(ctx, func(uow storage.UnitOfWork) error {
		status, err := uow.UserStatus(fromID)
		if err != nil {
			if !errors.Is(err, storage.ErrNotFound) {
				return err
			}
			status = &models.UserStatus{UserID: fromID}
		}
		hasSubjects = status.Subjects != ""
		status.Status = models.StatusStarted
		return uow.UpsertUserStatus(status)
	})
	if err != nil {
		log.Error("Failed to upsert user status", zap.Error(err))
		return
	}

	message := msgWelcome
	if hasSubjects && c.markGreeted(fromID) {
		message += "\n" + msgWelcomeBack
	}

	c.send(ctx, log, fromID, message, welcomeKeyboard(hasSubjects))
}

func (c *Controller) handleStartAnalysis(ctx context.Context, log *zap.Logger, fromID int64) {
	if err := c.ensureRegistered(ctx, fromID); err != nil {
		log.Error("Failed to register user", zap.Error(err))
		return
	}

	ids, err := c.social.Subscriptions(ctx, fromID, c.cfg.SubscriptionSample)
	if err != nil {
		if errors.Is(err, vk.ErrAccessDenied) {
			log.Info("Subscription list is private")
			c.send(ctx, log, fromID, msgAccessDenied, retryKeyboard())
			return
		}
		log.Error("Failed to fetch subscriptions", zap.Error(err))
		c.send(ctx, log, fromID, msgAnalysisFailed, retryKeyboard())
		return
	}

	if !c.tryAcquire(fromID) {
		c.send(ctx, log, fromID, msgPleaseWait, nil)
		return
	}
	defer c.release(fromID)

	c.send(ctx, log, fromID, msgAnalysisStarted, nil)

	docs := c.collectDocuments(ctx, log, ids)

	predictions, err := c.classifier.Classify(ctx, docs)
	if err != nil {
		log.Error("Classification failed", zap.Error(err))
		c.send(ctx, log, fromID, msgAnalysisFailed, retryKeyboard())
		return
	}

	subjects := topCategories(predictions, 3)
	if len(subjects) == 0 {
		log.Warn("Analysis inferred no categories", zap.Int("documents", len(docs)))
		c.send(ctx, log, fromID, msgAnalysisFailed, retryKeyboard())
		return
	}

	var records []models.GroupRecord
	err = c.store.Do(ctx, func(uow storage.UnitOfWork) error {
		status := &models.UserStatus{
			UserID: fromID,
			Status: models.StatusShowPage,
			Page:   1,
		}
		status.SetSubjects(subjects)
		if err := uow.UpsertUserStatus(status); err != nil {
			return err
		}
		records, err = uow.CuratedBySubjects(subjects)
		return err
	})
	if err != nil {
		log.Error("Failed to persist analysis result", zap.Error(err))
		c.send(ctx, log, fromID, msgAnalysisFailed, retryKeyboard())
		return
	}

	c.send(ctx, log, fromID, summaryMessage(subjects), nil)

	if len(records) == 0 {
		// Exact-match filtering between classifier output and catalog
		// subjects silently yields empty pages; keep it observable.
		log.Warn("No curated groups matched inferred subjects",
			zap.Strings("subjects", subjects))
		c.send(ctx, log, fromID, msgNoMatches, retryKeyboard())
		return
	}

	c.sendPage(ctx, log, fromID, records, 1)
}

func (c *Controller) handleShowRecommendation(ctx context.Context, log *zap.Logger, fromID int64, page int) {
	analyzed := true
	var (
		subjects []string
		records  []models.GroupRecord
	)
	err := c.store.Do(ctx, func(uow storage.UnitOfWork) error {
		status, err := uow.UserStatus(fromID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				analyzed = false
				return nil
			}
			return err
		}
		if status.Subjects == "" {
			analyzed = false
			return nil
		}

		subjects = status.SubjectList()
		records, err = uow.CuratedBySubjects(subjects)
		if err != nil {
			return err
		}

		status.Status = models.StatusShowPage
		status.Page = page
		return uow.UpsertUserStatus(status)
	})
	if err != nil {
		log.Error("Failed to load recommendations", zap.Error(err))
		return
	}

	if !analyzed {
		c.send(ctx, log, fromID, msgShallWeStart, welcomeKeyboard(false))
		return
	}

	if len(records) == 0 {
		log.Warn("No curated groups matched cached subjects",
			zap.Strings("subjects", subjects))
		c.send(ctx, log, fromID, msgNoMatches, retryKeyboard())
		return
	}

	c.sendPage(ctx, log, fromID, records, page)
}

func (c *Controller) handleAdminEnter(ctx context.Context, log *zap.Logger, fromID int64) {
	err := c.store.Do(ctx, func(uow storage.UnitOfWork) error {
		status, err := uow.UserStatus(fromID)
		if err != nil {
			if !errors.Is(err, storage.ErrNotFound) {
				return err
			}
			status = &models.UserStatus{UserID: fromID}
		}
		status.Status = models.StatusAdmin
		return uow.UpsertUserStatus(status)
	})
	if err != nil {
		log.Error("Failed to enter admin mode", zap.Error(err))
		return
	}

	c.send(ctx, log, fromID, msgAdminMode, adminKeyboard())
}

// handleDatasetFilter runs one step of the labeling workflow: record the
// incoming decision if the payload carries one, then present the next
// unprocessed candidate. The watermark only moves after the transaction
// commits, and stale replays (group id at or below the watermark) are
// acknowledged without touching the catalog.
func (c *Controller) handleDatasetFilter(ctx context.Context, log *zap.Logger, fromID int64, intent Intent) {
	c.adminMu.Lock()
	defer c.adminMu.Unlock()

	latest := c.latestID
	var (
		isAdmin bool
		stale   bool
		next    *models.GroupRecord
	)
	err := c.store.Do(ctx, func(uow storage.UnitOfWork) error {
		status, err := uow.UserStatus(fromID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return nil
			}
			return err
		}
		if status.Status != models.StatusAdmin {
			return nil
		}
		isAdmin = true

		if intent.Decision {
			if intent.GroupID > latest {
				candidate, err := uow.CandidateByID(intent.GroupID)
				if err != nil {
					return fmt.Errorf("candidate %d: %w", intent.GroupID, err)
				}
				err = uow.AppendCurated(models.GroupRecord{
					GroupID: candidate.GroupID,
					Name:    candidate.Name,
					Subject: models.SubjectByIndex(intent.CategoryIndex),
					Link:    candidate.Link,
				})
				if err != nil {
					return err
				}
				latest = intent.GroupID
			} else {
				stale = true
			}
		}

		n, err := uow.NextCandidate(latest)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return nil
			}
			return err
		}
		next = n
		return nil
	})
	if err != nil {
		log.Error("Dataset filter step failed", zap.Error(err))
		return
	}

	if !isAdmin {
		log.Info("Non-admin attempted dataset filtering")
		c.send(ctx, log, fromID, msgShallWeStart, welcomeKeyboard(false))
		return
	}

	c.latestID = latest

	if stale {
		c.send(ctx, log, fromID, msgAlreadyAdded, nil)
	}

	if next == nil {
		c.send(ctx, log, fromID, msgDatasetComplete, welcomeKeyboard(false))
		return
	}

	text := fmt.Sprintf("Which category fits this group?\n%s -- %s", next.Name, next.Link)
	c.send(ctx, log, fromID, text, labelingKeyboard(next.GroupID))
}

// collectDocuments fetches recent wall posts for every sampled group,
// concurrently with a bound, and joins the non-advertisement texts into
// one document per group. Groups that fail or have nothing readable are
// skipped; partial results are fine.
func (c *Controller) collectDocuments(ctx context.Context, log *zap.Logger, groupIDs []int64) []string {
	var (
		mu   sync.Mutex
		docs []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(wallFetchConcurrency)

	for _, id := range groupIDs {
		id := id
		g.Go(func() error {
			posts, err := c.social.WallPosts(gctx, id, c.cfg.PostsPerGroup)
			if err != nil {
				log.Warn("Skipping group wall", zap.Int64("group_id", id), zap.Error(err))
				return nil
			}

			texts := make([]string, 0, len(posts))
			for _, post := range posts {
				if post.MarkedAsAds || post.Text == "" {
					continue
				}
				texts = append(texts, post.Text)
			}
			if len(texts) == 0 {
				return nil
			}

			mu.Lock()
			docs = append(docs, strings.Join(texts, "\n"))
			mu.Unlock()
			return nil
		})
	}

	// Workers never return errors; partial failure is logged per group.
	_ = g.Wait()

	return docs
}

// ensureRegistered creates the UserStatus record for senders that start an
// analysis without ever passing the welcome flow.
func (c *Controller) ensureRegistered(ctx context.Context, fromID int64) error {
	return c.store.Do(ctx, func(uow storage.UnitOfWork) error {
		_, err := uow.UserStatus(fromID)
		if err == nil {
			return nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return err
		}
		return uow.UpsertUserStatus(&models.UserStatus{
			UserID: fromID,
			Status: models.StatusStarted,
		})
	})
}

func (c *Controller) sendPage(ctx context.Context, log *zap.Logger, fromID int64, records []models.GroupRecord, page int) {
	total := len(records)
	size := c.cfg.PageSize

	var b strings.Builder
	fmt.Fprintf(&b, "Page %d:", page)
	for i, rec := range pageSlice(records, page, size) {
		fmt.Fprintf(&b, "\n%d. %s -- %s", i+1, rec.Name, rec.Link)
	}

	kb := pageKeyboard(prevPage(page, total, size), nextPage(page, total, size))
	c.send(ctx, log, fromID, b.String(), kb)
}

func (c *Controller) send(ctx context.Context, log *zap.Logger, userID int64, text string, keyboard *object.MessagesKeyboard) {
	if err := c.messenger.Send(ctx, userID, text, keyboard); err != nil {
		log.Error("Failed to send message", zap.Error(err))
	}
}

func summaryMessage(subjects []string) string {
	var b strings.Builder
	b.WriteString(msgSummaryHeader)
	for i, subject := range subjects {
		fmt.Fprintf(&b, "\n%d. %s", i+1, models.Capitalize(subject))
	}
	return b.String()
}

func topCategories(predictions []classifier.Prediction, n int) []string {
	if len(predictions) < n {
		n = len(predictions)
	}
	categories := make([]string, 0, n)
	for _, p := range predictions[:n] {
		categories = append(categories, p.Category)
	}
	return categories
}

func (c *Controller) isInFlight(userID int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.inFlight[userID]
	return ok
}

// tryAcquire atomically marks an analysis as in flight for the user,
// reporting false when one is already running.
func (c *Controller) tryAcquire(userID int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.inFlight[userID]; ok {
		return false
	}
	c.inFlight[userID] = struct{}{}
	return true
}

func (c *Controller) release(userID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inFlight, userID)
}

// markGreeted reports whether this is the first welcome-back for the user
// in this process lifetime. Best-effort only, never persisted.
func (c *Controller) markGreeted(userID int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.greeted[userID]; ok {
		return false
	}
	c.greeted[userID] = struct{}{}
	return true
}
