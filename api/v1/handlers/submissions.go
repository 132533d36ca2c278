package handlers

import (
	"bytes"

	"murphy/internal/apperr"
	"murphy/internal/identity"
	"murphy/internal/metrics"
	"murphy/internal/models"
	"murphy/internal/ratelimit"
	"murphy/internal/store"
	"murphy/internal/submission"
	"murphy/pkg/third/geetest"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const submittedMessage = "Law submitted successfully! It will be reviewed before publishing."

type SubmissionHandle struct {
	store   LawStore
	limiter ratelimit.Limiter
	metrics *metrics.Metrics
	captcha CaptchaVerifier
}

type submitRequest struct {
	Text   string `json:"text"`
	Title  string `json:"title"`
	Author string `json:"author"`
	Email  string `json:"email"`
	// CategoryID may arrive as a number or a string
	CategoryID json.RawMessage    `json:"category_id"`
	Captcha    *geetest.Challenge `json:"captcha"`
}

func RegisterSubmissions(laws fiber.Router, d Deps) {
	handler := SubmissionHandle{store: d.Store, limiter: d.Limiter, metrics: d.Metrics, captcha: d.Captcha}

	laws.Post("/", handler.Submit)
}

// rawText renders a JSON scalar as the text the validator parses. null and
// absent both become empty.
func rawText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	return string(raw)
}

// Submit 提交新条目，进入审核队列
func (h *SubmissionHandle) Submit(c *fiber.Ctx) error {
	_, err := limit(c, h.limiter, h.metrics, ratelimit.ActionSubmit)
	if err != nil {
		return err
	}

	var req submitRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		h.metrics.Submission("invalid")
		return apperr.InvalidArgument("Invalid request body")
	}

	sub, err := submission.Validate(submission.Input{
		Text:       req.Text,
		Title:      req.Title,
		Author:     req.Author,
		Email:      req.Email,
		CategoryID: rawText(req.CategoryID),
	})
	if err != nil {
		h.metrics.Submission("invalid")
		return err
	}

	if h.captcha != nil && !h.captcha.Validate(c.UserContext(), req.Captcha, identity.IPFromCtx(c)) {
		h.metrics.Submission("captcha")
		return apperr.InvalidArgument("Captcha verification failed")
	}

	law := sub.Law()
	if err := h.store.InsertSubmission(c.UserContext(), law, sub.CategoryID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.metrics.Submission("invalid")
			return apperr.InvalidArgument("Category not found")
		}
		return apperr.Persistence(err, "Failed to submit law")
	}

	h.metrics.Submission("accepted")
	log.Info().Int64("law_id", law.Id).Msg("law submitted for review")
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":      law.Id,
		"title":   law.Title,
		"text":    law.Text,
		"status":  models.LawStatusInReview,
		"message": submittedMessage,
	})
}
