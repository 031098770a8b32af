package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/AlexZinkM/bitebudget-wallet/internal/client"
	"github.com/AlexZinkM/bitebudget-wallet/internal/model"
)

const (
	tableTransactions = "transactions"
	tableProfiles     = "profiles"
	rpcUserEmail      = "get_email_from_auth_users"

	feedColumns = "id,restaurant,amount,userID,created_at,likes,comments"
	recentLimit = 50
	unknownUser = "Unknown User"

	// inserts waiting for an email lookup
	insertBuffer = 64
)

var (
	ErrUserRequired   = errors.New("user id is required")
	ErrInvalidBudget  = errors.New("budget cannot be negative")
	ErrPostNotFound   = errors.New("post not found")
	ErrEmptyInsertRow = errors.New("backend returned no row")
)

// Backend is the PostgREST surface the feed reads and writes.
type Backend interface {
	From(table string) *client.Query
	RPC(ctx context.Context, fn string, params any) (*client.Response, error)
}

// Subscriber streams row changes.
type Subscriber interface {
	Subscribe(ctx context.Context, cfg client.PostgresChanges, handler client.ChangeHandler) error
	Done() <-chan struct{}
}

type row struct {
	ID         int64   `json:"id"`
	UserID     string  `json:"userID"`
	Restaurant string  `json:"restaurant"`
	Amount     float64 `json:"amount"`
	CreatedAt  string  `json:"created_at"`
	Likes      *int    `json:"likes"`
	Comments   *int    `json:"comments"`
}

type insertRow struct {
	UserID     string  `json:"userID"`
	Restaurant string  `json:"restaurant"`
	Amount     float64 `json:"amount"`
	CreatedAt  string  `json:"created_at"`
	Likes      int     `json:"likes"`
	Comments   int     `json:"comments"`
	IsLiked    bool    `json:"is_liked"`
}

// Feed is the social spending feed.
// The last successful read plus live inserts are cached for when the backend is unreachable.
type Feed struct {
	backend Backend
	logger  *zap.Logger
	now     func() time.Time

	mu     sync.RWMutex
	cache  []model.FeedItem
	emails map[string]string
	liked  map[int64]bool
}

func New(backend Backend, logger *zap.Logger) *Feed {
	return &Feed{
		backend: backend,
		logger:  logger.Named("feed"),
		now:     time.Now,
		emails:  make(map[string]string),
		liked:   make(map[int64]bool),
	}
}

// Recent returns the newest posts.
func (f *Feed) Recent(ctx context.Context) *model.FeedResponse {
	resp, err := f.backend.From(tableTransactions).
		Select(feedColumns).
		Order("created_at", false).
		Limit(recentLimit).
		Execute(ctx)
	if err != nil {
		f.logger.Error("failed to fetch posts", zap.Error(err))
		return f.cached()
	}

	var rows []row
	if err := resp.JSON(&rows); err != nil {
		f.logger.Error("failed to decode posts", zap.Error(err))
		return f.cached()
	}

	items := make([]model.FeedItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, f.item(ctx, r))
	}

	f.mu.Lock()
	f.cache = items
	f.mu.Unlock()

	return &model.FeedResponse{Items: items}
}

// Post adds a spending entry for userID.
func (f *Feed) Post(ctx context.Context, req *model.PostRequest) (*model.FeedItem, error) {
	resp, err := f.backend.From(tableTransactions).ExecuteInsert(ctx, []insertRow{{
		UserID:     req.UserID,
		Restaurant: req.Restaurant,
		Amount:     req.Amount,
		CreatedAt:  f.now().UTC().Format(time.RFC3339Nano),
	}})
	if err != nil {
		f.logger.Error("failed to create post", zap.Error(err))
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	var rows []row
	if err := resp.JSON(&rows); err != nil {
		return nil, fmt.Errorf("failed to decode post: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyInsertRow
	}

	item := f.item(ctx, rows[0])
	return &item, nil
}

// ToggleLike flips the like state of a post for this app instance.
func (f *Feed) ToggleLike(ctx context.Context, id int64) (*model.FeedItem, error) {
	resp, err := f.backend.From(tableTransactions).Select(feedColumns).Eq("id", id).Execute(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch post: %w", err)
	}
	var rows []row
	if err := resp.JSON(&rows); err != nil {
		return nil, fmt.Errorf("failed to decode post: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrPostNotFound
	}
	r := rows[0]

	f.mu.RLock()
	liked := f.liked[id]
	f.mu.RUnlock()

	likes := intOrZero(r.Likes)
	if liked {
		likes = max(likes-1, 0)
	} else {
		likes++
	}

	_, err = f.backend.From(tableTransactions).
		Eq("id", id).
		Eq("userID", r.UserID).
		ExecuteUpdate(ctx, map[string]int{"likes": likes})
	if err != nil {
		f.logger.Error("failed to update likes", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to update likes: %w", err)
	}

	f.mu.Lock()
	f.liked[id] = !liked
	for i := range f.cache {
		if f.cache[i].ID == id {
			f.cache[i].Likes = likes
			f.cache[i].IsLiked = !liked
		}
	}
	f.mu.Unlock()

	r.Likes = &likes
	item := f.item(ctx, r)
	return &item, nil
}

// Summary totals what userID spent against their budget.
func (f *Feed) Summary(ctx context.Context, userID string) (*model.SummaryResponse, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}
	summary := &model.SummaryResponse{UserID: userID}

	resp, err := f.backend.From(tableTransactions).Select("amount").Eq("userID", userID).Execute(ctx)
	if err != nil {
		f.logger.Error("failed to fetch spending", zap.String("user", userID), zap.Error(err))
	} else {
		var rows []struct {
			Amount float64 `json:"amount"`
		}
		if err := resp.JSON(&rows); err != nil {
			f.logger.Error("failed to decode spending", zap.Error(err))
		}
		for _, r := range rows {
			summary.TotalSpent += r.Amount
		}
	}

	resp, err = f.backend.From(tableProfiles).Select("budget").Eq("id", userID).Single().Execute(ctx)
	if err != nil {
		f.logger.Warn("failed to fetch budget", zap.String("user", userID), zap.Error(err))
	} else {
		var profile struct {
			Budget *float64 `json:"budget"`
		}
		if err := resp.JSON(&profile); err != nil {
			f.logger.Warn("failed to decode budget", zap.Error(err))
		} else if profile.Budget != nil {
			summary.Budget = *profile.Budget
		}
	}

	summary.Remaining = summary.Budget - summary.TotalSpent
	return summary, nil
}

// SetBudget stores the monthly budget of userID.
func (f *Feed) SetBudget(ctx context.Context, userID string, budget float64) error {
	if userID == "" {
		return ErrUserRequired
	}
	if budget < 0 {
		return ErrInvalidBudget
	}
	_, err := f.backend.From(tableProfiles).Eq("id", userID).ExecuteUpdate(ctx, map[string]float64{"budget": budget})
	if err != nil {
		f.logger.Error("failed to save budget", zap.String("user", userID), zap.Error(err))
		return fmt.Errorf("failed to save budget: %w", err)
	}
	return nil
}

// Watch prepends inserted posts to the cache until ctx ends or the stream drops.
// Emails are resolved here rather than in the subscriber's read loop.
func (f *Feed) Watch(ctx context.Context, sub Subscriber) error {
	inserts := make(chan row, insertBuffer)
	err := sub.Subscribe(ctx, client.PostgresChanges{
		Event:  "INSERT",
		Schema: "public",
		Table:  tableTransactions,
	}, func(c client.Change) {
		var r row
		if err := json.Unmarshal(c.Record, &r); err != nil {
			f.logger.Warn("failed to decode inserted post", zap.Error(err))
			return
		}
		select {
		case inserts <- r:
		default:
			// Queue full: keep the post with whatever email is already known.
			f.logger.Warn("insert queue full", zap.Int64("id", r.ID))
			f.prepend(f.itemWithEmail(r, f.knownEmail(r.UserID)))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to posts: %w", err)
	}

	for {
		select {
		case r := <-inserts:
			f.prepend(f.item(ctx, r))
		case <-ctx.Done():
			return nil
		case <-sub.Done():
			for {
				select {
				case r := <-inserts:
					f.prepend(f.item(ctx, r))
				default:
					return nil
				}
			}
		}
	}
}

func (f *Feed) prepend(item model.FeedItem) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cache = append([]model.FeedItem{item}, f.cache...)
	if len(f.cache) > recentLimit {
		f.cache = f.cache[:recentLimit]
	}
}

func (f *Feed) cached() *model.FeedResponse {
	f.mu.RLock()
	defer f.mu.RUnlock()
	items := make([]model.FeedItem, len(f.cache))
	copy(items, f.cache)
	return &model.FeedResponse{Items: items, Cached: true}
}

func (f *Feed) item(ctx context.Context, r row) model.FeedItem {
	return f.itemWithEmail(r, f.email(ctx, r.UserID))
}

func (f *Feed) itemWithEmail(r row, email string) model.FeedItem {
	f.mu.RLock()
	liked := f.liked[r.ID]
	f.mu.RUnlock()

	return model.FeedItem{
		ID:         r.ID,
		UserID:     r.UserID,
		Email:      email,
		Restaurant: r.Restaurant,
		Amount:     r.Amount,
		CreatedAt:  parseTimestamp(r.CreatedAt),
		Likes:      intOrZero(r.Likes),
		Comments:   intOrZero(r.Comments),
		IsLiked:    liked,
	}
}

// email resolves a user ID, remembering successful lookups.
func (f *Feed) email(ctx context.Context, userID string) string {
	if userID == "" {
		return unknownUser
	}

	f.mu.RLock()
	email, ok := f.emails[userID]
	f.mu.RUnlock()
	if ok {
		return email
	}

	resp, err := f.backend.RPC(ctx, rpcUserEmail, map[string]string{"user_id": userID})
	if err != nil {
		f.logger.Warn("failed to fetch email", zap.String("user", userID), zap.Error(err))
		return unknownUser
	}
	var out []struct {
		Email string `json:"email"`
	}
	if err := resp.JSON(&out); err != nil || len(out) == 0 || out[0].Email == "" {
		return unknownUser
	}

	f.mu.Lock()
	f.emails[userID] = out[0].Email
	f.mu.Unlock()
	return out[0].Email
}

// knownEmail returns a remembered email without asking the backend.
func (f *Feed) knownEmail(userID string) string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if email, ok := f.emails[userID]; ok {
		return email
	}
	return unknownUser
}

// parseTimestamp accepts timestamptz and timestamp columns.
func parseTimestamp(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func intOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
