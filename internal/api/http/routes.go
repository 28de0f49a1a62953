package httpapi

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"weather-collector/internal/collector"
	"weather-collector/internal/store"
)

var validate = validator.New()

// RegisterRoutes wires the daemon status handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, runs *store.RunStore, selector *collector.Selector) {
	v1 := app.Group("/api/v1")

	v1.Get("/runs/latest", func(c *fiber.Ctx) error {
		run, err := runs.Latest()
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no collection run has completed yet")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to load latest run")
		}
		return c.JSON(run)
	})

	v1.Get("/runs", func(c *fiber.Ctx) error {
		var q runsQuery
		if err := q.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		recent := runs.Recent(q.Limit)
		summaries := make([]fiber.Map, 0, len(recent))
		for _, run := range recent {
			summaries = append(summaries, fiber.Map{
				"runId":            run.RunID,
				"runstamp":         run.Runstamp,
				"recordsCollected": run.Stats.RecordsCollected,
				"requestsSent":     run.Stats.RequestsSent,
				"hardFailures":     run.Stats.HardFailureCount(),
				"averageQuality":   run.Stats.AverageQuality(),
				"startedAt":        run.Stats.StartedAt,
				"endedAt":          run.Stats.EndedAt,
			})
		}
		return c.JSON(fiber.Map{"runs": summaries})
	})

	v1.Get("/providers", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"providers": selector.Health()})
	})
}

// runsQuery holds query parameters for the run-list endpoint.
type runsQuery struct {
	Limit int `validate:"gte=1,lte=50"`
}

func (q *runsQuery) bind(c *fiber.Ctx) error {
	q.Limit = 10
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.New("limit must be an integer")
		}
		q.Limit = n
	}
	return nil
}
