package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"furniture_back_end/internal/models"
	"furniture_back_end/internal/store"
)

const DefaultCartTTL = 30 * 24 * time.Hour // 30 jours

// CartStore garde le panier dans un hash Redis "cart:<userID>" :
// un champ par ligne, valeur JSON. Le TTL est repoussé à chaque écriture.
type CartStore struct {
	client *redis.Client
	ttl    time.Duration
}

var _ store.CartStore = (*CartStore)(nil)

func NewCartStore(client *redis.Client, ttl time.Duration) *CartStore {
	if ttl <= 0 {
		ttl = DefaultCartTTL
	}
	return &CartStore{client: client, ttl: ttl}
}

func cartKey(userID string) string { return "cart:" + userID }

// maxWatchRetries borne les reprises WATCH/MULTI quand le panier bouge.
const maxWatchRetries = 8

func decodeLines(raw map[string]string) ([]models.CartLine, error) {
	lines := make([]models.CartLine, 0, len(raw))
	for field, data := range raw {
		var l models.CartLine
		if err := json.Unmarshal([]byte(data), &l); err != nil {
			return nil, fmt.Errorf("décodage ligne %s: %w", field, err)
		}
		lines = append(lines, l)
	}
	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].CreatedAt.After(lines[j].CreatedAt)
	})
	return lines, nil
}

func (s *CartStore) ListLines(ctx context.Context, userID string) ([]models.CartLine, error) {
	raw, err := s.client.HGetAll(ctx, cartKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("lecture panier: %w", err)
	}
	return decodeLines(raw)
}

// MergeLine surveille le hash (WATCH) : si une autre écriture passe entre la
// lecture et EXEC, la transaction échoue et on rejoue.
func (s *CartStore) MergeLine(ctx context.Context, l *models.CartLine) (*models.CartLine, bool, error) {
	key := cartKey(l.UserID)
	var (
		out     *models.CartLine
		created bool
	)
	merge := func(tx *redis.Tx) error {
		raw, err := tx.HGetAll(ctx, key).Result()
		if err != nil {
			return err
		}
		lines, err := decodeLines(raw)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		var line *models.CartLine
		for i := range lines {
			if lines[i].ProductID == l.ProductID {
				line = &lines[i]
				break
			}
		}
		if line == nil {
			fresh := *l
			if fresh.ID == "" {
				fresh.ID = uuid.NewString()
			}
			fresh.CreatedAt = now
			line, created = &fresh, true
		} else {
			line.Qty += l.Qty
			created = false
		}
		line.UpdatedAt = now

		data, err := json.Marshal(line)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, line.ID, data)
			pipe.Expire(ctx, key, s.ttl)
			return nil
		})
		if err == nil {
			out = line
		}
		return err
	}

	for i := 0; i < maxWatchRetries; i++ {
		err := s.client.Watch(ctx, merge, key)
		if err == nil {
			return out, created, nil
		}
		if !errors.Is(err, redis.TxFailedErr) {
			return nil, false, fmt.Errorf("fusion ligne: %w", err)
		}
	}
	return nil, false, fmt.Errorf("fusion ligne: panier %s trop disputé", l.UserID)
}

func (s *CartStore) GetLine(ctx context.Context, userID, lineID string) (*models.CartLine, error) {
	data, err := s.client.HGet(ctx, cartKey(userID), lineID).Result()
	if errors.Is(err, redis.Nil) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lecture ligne: %w", err)
	}
	var l models.CartLine
	if err := json.Unmarshal([]byte(data), &l); err != nil {
		return nil, fmt.Errorf("décodage ligne: %w", err)
	}
	return &l, nil
}

func (s *CartStore) SaveLine(ctx context.Context, l *models.CartLine) error {
	now := time.Now().UTC()
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = now
	}
	l.UpdatedAt = now

	data, err := json.Marshal(l)
	if err != nil {
		return err
	}
	key := cartKey(l.UserID)
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, l.ID, data)
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("sauvegarde ligne: %w", err)
	}
	return nil
}

func (s *CartStore) DeleteLine(ctx context.Context, userID, lineID string) error {
	n, err := s.client.HDel(ctx, cartKey(userID), lineID).Result()
	if err != nil {
		return fmt.Errorf("suppression ligne: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// TakeLines lit et supprime le hash dans un même MULTI/EXEC.
func (s *CartStore) TakeLines(ctx context.Context, userID string) ([]models.CartLine, error) {
	key := cartKey(userID)
	var all *redis.MapStringStringCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		all = pipe.HGetAll(ctx, key)
		pipe.Del(ctx, key)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("retrait panier: %w", err)
	}
	return decodeLines(all.Val())
}

func (s *CartStore) ClearLines(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, cartKey(userID)).Err(); err != nil {
		return fmt.Errorf("vidage panier: %w", err)
	}
	return nil
}
