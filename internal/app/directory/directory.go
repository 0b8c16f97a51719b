package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"

	"bookfinder/internal/app/book"
	"bookfinder/internal/app/kv"
	"bookfinder/internal/app/user"
	"bookfinder/internal/pkg/errs"
	"bookfinder/internal/pkg/logx"
	"bookfinder/internal/pkg/randx"
)

// service implements the Service interface on top of a kv.Store.
type service struct {
	store kv.Store
	opts  Options

	// mu serializes the read-modify-write of the user collection.
	mu sync.Mutex

	tracer trace.Tracer
	logger zerolog.Logger
}

// NewService creates a directory backed by store.
func NewService(store kv.Store, opts Options) Service {
	if opts.UsersKey == "" {
		opts.UsersKey = kv.KeysFor("").Users
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &service{
		store:  store,
		opts:   opts,
		tracer: otel.Tracer("bookfinder/directory"),
		logger: logx.Component("directory"),
	}
}

// Register creates an account and returns its session.
func (s *service) Register(ctx context.Context, in RegisterInput) (*user.Session, error) {
	ctx, span := s.tracer.Start(ctx, "directory.register")
	defer span.End()

	if in.Email == "" {
		return nil, fail(span, errs.NewError(errs.ErrInvalidParams))
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, fail(span, errs.Wrap(errs.ErrInvalidParams, err))
	}

	if err := s.wait(ctx, s.opts.Latency); err != nil {
		return nil, fail(span, err)
	}

	hash, err := hashPassword(in.Password, s.opts.BcryptCost)
	if err != nil {
		return nil, fail(span, errs.Wrap(errs.ErrUnknown, err))
	}

	var session *user.Session
	err = s.mutate(ctx, func(records []user.Record) ([]user.Record, error) {
		if indexByEmail(records, in.Email) >= 0 {
			return nil, errs.NewError(errs.ErrUserAlreadyExists)
		}

		record := user.Record{
			ID:           randx.UserID(),
			Email:        in.Email,
			Name:         in.Name,
			PasswordHash: hash,
			Favorites:    []book.Book{},
			History:      []book.HistoryEntry{},
			CreatedAt:    s.opts.Now().UTC(),
		}
		session = record.Session()
		span.SetAttributes(attribute.String("user.id", record.ID))

		return append(records, record), nil
	})
	if err != nil {
		return nil, fail(span, err)
	}

	s.logger.Info().Str("user_id", session.ID).Msg("User registered")
	return session, nil
}

// Login returns the session of the account matching both email and password.
func (s *service) Login(ctx context.Context, in Credentials) (*user.Session, error) {
	ctx, span := s.tracer.Start(ctx, "directory.login")
	defer span.End()

	if err := s.wait(ctx, s.opts.Latency); err != nil {
		return nil, fail(span, err)
	}

	var session *user.Session
	err := s.mutate(ctx, func(records []user.Record) ([]user.Record, error) {
		for i := range records {
			r := &records[i]
			if r.Email != in.Email {
				continue
			}

			ok, upgrade := passwordMatches(r, in.Password)
			if !ok {
				continue
			}

			session = r.Session()
			if !upgrade {
				return nil, nil
			}

			// A legacy password bcrypt cannot take stays as it is; the login still succeeds.
			if err := setPassword(r, in.Password, s.opts.BcryptCost); err != nil {
				s.logger.Warn().Err(err).Str("user_id", r.ID).Msg("Keeping plaintext password, re-hash failed")
				return nil, nil
			}
			s.logger.Info().Str("user_id", r.ID).Msg("Upgraded plaintext password to bcrypt hash")
			return records, nil
		}

		return nil, errs.NewError(errs.ErrInvalidCredentials)
	})
	if err != nil {
		return nil, fail(span, err)
	}

	span.SetAttributes(attribute.String("user.id", session.ID))
	return session, nil
}

// GetUser returns the session of the account with userID.
func (s *service) GetUser(ctx context.Context, userID string) (*user.Session, error) {
	ctx, span := s.tracer.Start(ctx, "directory.get_user",
		trace.WithAttributes(attribute.String("user.id", userID)))
	defer span.End()

	if err := s.wait(ctx, s.opts.Latency); err != nil {
		return nil, fail(span, err)
	}

	s.mu.Lock()
	records := s.load(context.WithoutCancel(ctx))
	s.mu.Unlock()

	i := indexByID(records, userID)
	if i < 0 {
		return nil, fail(span, errs.NewError(errs.ErrUserNotFound))
	}
	return records[i].Session(), nil
}

// UpdateProfile merges the non-nil fields of in into the account with userID.
func (s *service) UpdateProfile(ctx context.Context, userID string, in ProfileUpdate) (*user.Session, error) {
	ctx, span := s.tracer.Start(ctx, "directory.update_profile",
		trace.WithAttributes(attribute.String("user.id", userID)))
	defer span.End()

	if in.Password != nil {
		if err := validatePassword(*in.Password); err != nil {
			return nil, fail(span, errs.Wrap(errs.ErrInvalidParams, err))
		}
	}
	if in.Email != nil && *in.Email == "" {
		return nil, fail(span, errs.NewError(errs.ErrInvalidParams))
	}

	if err := s.wait(ctx, s.opts.Latency); err != nil {
		return nil, fail(span, err)
	}

	var session *user.Session
	err := s.mutate(ctx, func(records []user.Record) ([]user.Record, error) {
		i := indexByID(records, userID)
		if i < 0 {
			return nil, errs.NewError(errs.ErrUserNotFound)
		}
		r := &records[i]

		if in.Email != nil && *in.Email != r.Email {
			if indexByEmail(records, *in.Email) >= 0 {
				return nil, errs.NewError(errs.ErrUserAlreadyExists)
			}
			r.Email = *in.Email
		}
		if in.Name != nil {
			r.Name = *in.Name
		}
		if in.Password != nil {
			if err := setPassword(r, *in.Password, s.opts.BcryptCost); err != nil {
				return nil, errs.Wrap(errs.ErrUnknown, err)
			}
		}
		if in.History != nil {
			r.History = append([]book.HistoryEntry{}, in.History...)
		}

		s.touch(r)
		session = r.Session()
		return records, nil
	})
	if err != nil {
		return nil, fail(span, err)
	}

	return session, nil
}

// UpdateFavorites replaces the favorites of the account with userID.
func (s *service) UpdateFavorites(ctx context.Context, userID string, favorites []book.Book) (*user.Session, error) {
	ctx, span := s.tracer.Start(ctx, "directory.update_favorites",
		trace.WithAttributes(
			attribute.String("user.id", userID),
			attribute.Int("favorites.count", len(favorites)),
		))
	defer span.End()

	if err := s.wait(ctx, s.opts.FavoritesLatency); err != nil {
		return nil, fail(span, err)
	}

	var session *user.Session
	err := s.mutate(ctx, func(records []user.Record) ([]user.Record, error) {
		i := indexByID(records, userID)
		if i < 0 {
			return nil, errs.NewError(errs.ErrUserNotFound)
		}
		r := &records[i]

		r.Favorites = append([]book.Book{}, favorites...)
		s.touch(r)
		session = r.Session()
		return records, nil
	})
	if err != nil {
		return nil, fail(span, err)
	}

	return session, nil
}

// wait blocks for d or until ctx is done.
func (s *service) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		if err := ctx.Err(); err != nil {
			return errs.Wrap(errs.ErrRequestTimeout, err)
		}
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return errs.Wrap(errs.ErrRequestTimeout, ctx.Err())
	case <-timer.C:
		return nil
	}
}

// mutate loads the collection, applies fn and saves the result when fn returns a non-nil slice.
// The storage phase ignores cancellation of ctx so that a started write always completes.
func (s *service) mutate(ctx context.Context, fn func([]user.Record) ([]user.Record, error)) error {
	ctx = context.WithoutCancel(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	updated, err := fn(s.load(ctx))
	if err != nil {
		return err
	}
	if updated != nil {
		s.save(ctx, updated)
	}
	return nil
}

// load reads the user collection. Missing or unreadable data yields an empty collection.
func (s *service) load(ctx context.Context) []user.Record {
	raw, ok, err := s.store.Get(ctx, s.opts.UsersKey)
	if err != nil {
		s.logger.Error().Err(errs.Wrap(errs.ErrStorageRead, err)).Str("key", s.opts.UsersKey).Msg("Error getting users from storage")
		return []user.Record{}
	}
	if !ok {
		return []user.Record{}
	}

	var records []user.Record
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		s.logger.Error().Err(errs.Wrap(errs.ErrStorageRead, err)).Str("key", s.opts.UsersKey).Msg("Error parsing users from storage")
		return []user.Record{}
	}
	if records == nil {
		records = []user.Record{}
	}
	return records
}

// save writes the user collection. Failures are logged, not returned.
func (s *service) save(ctx context.Context, records []user.Record) {
	data, err := json.Marshal(records)
	if err == nil {
		err = s.store.Set(ctx, s.opts.UsersKey, string(data))
	}
	if err != nil {
		s.logger.Error().Err(errs.Wrap(errs.ErrStorageWrite, err)).Str("key", s.opts.UsersKey).Msg("Error saving users to storage")
	}
}

func (s *service) touch(r *user.Record) {
	now := s.opts.Now().UTC()
	r.UpdatedAt = &now
}

func indexByEmail(records []user.Record, email string) int {
	for i := range records {
		if records[i].Email == email {
			return i
		}
	}
	return -1
}

func indexByID(records []user.Record, id string) int {
	for i := range records {
		if records[i].ID == id {
			return i
		}
	}
	return -1
}

// fail records err on span and returns it.
func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, fmt.Sprint(err))
	return err
}
