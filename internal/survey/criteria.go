package survey

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-redis/redis/v8"
)

// CriteriaCount is the number of free-text rating criteria per survey.
const CriteriaCount = 6

// Criteria holds the labels k1..k6 in order; unused slots are empty.
type Criteria [CriteriaCount]string

// Key returns the form name of slot i ("k1".."k6").
func Key(i int) string {
	return fmt.Sprintf("k%d", i+1)
}

// Filled returns the non-empty labels in order.
func (c Criteria) Filled() []string {
	var out []string
	for _, v := range c {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// ParseCriteria reads k1..k6 from form values. Both "k1" and
// "criteria[k1]" are accepted.
func ParseCriteria(values url.Values) Criteria {
	var c Criteria
	for i := range c {
		key := Key(i)
		v := values.Get("criteria[" + key + "]")
		if v == "" {
			v = values.Get(key)
		}
		c[i] = strings.TrimSpace(v)
	}
	return c
}

// CriteriaStore remembers the last criteria entered for a plan.
type CriteriaStore interface {
	Load(ctx context.Context, planID int64) (Criteria, error)
	Save(ctx context.Context, planID int64, c Criteria) error
	Clear(ctx context.Context, planID int64) error
}

type RedisCriteriaStore struct {
	Client *redis.Client
}

func NewRedisCriteriaStore(client *redis.Client) *RedisCriteriaStore {
	return &RedisCriteriaStore{Client: client}
}

func criteriaKey(planID int64) string {
	return fmt.Sprintf("umfrage:kriterien:%d", planID)
}

func (s *RedisCriteriaStore) Load(ctx context.Context, planID int64) (Criteria, error) {
	var c Criteria
	values, err := s.Client.HGetAll(ctx, criteriaKey(planID)).Result()
	if err != nil {
		return c, err
	}
	for i := range c {
		c[i] = values[Key(i)]
	}
	return c, nil
}

func (s *RedisCriteriaStore) Save(ctx context.Context, planID int64, c Criteria) error {
	fields := make(map[string]interface{}, CriteriaCount)
	for i, v := range c {
		fields[Key(i)] = v
	}
	return s.Client.HSet(ctx, criteriaKey(planID), fields).Err()
}

func (s *RedisCriteriaStore) Clear(ctx context.Context, planID int64) error {
	return s.Client.Del(ctx, criteriaKey(planID)).Err()
}
