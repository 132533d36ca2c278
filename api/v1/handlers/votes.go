package handlers

import (
	"murphy/internal/apperr"
	"murphy/internal/ledger"
	"murphy/internal/metrics"
	"murphy/internal/models"
	"murphy/internal/ratelimit"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
)

type VoteHandle struct {
	ledger  VoteLedger
	limiter ratelimit.Limiter
	metrics *metrics.Metrics
}

type voteRequest struct {
	VoteType string `json:"vote_type"`
}

// voteResponse omits vote_type when the caller holds no vote afterwards.
type voteResponse struct {
	LawID     int64           `json:"law_id"`
	VoteType  models.VoteType `json:"vote_type,omitempty"`
	Upvotes   int64           `json:"upvotes"`
	Downvotes int64           `json:"downvotes"`
}

func responseOf(out ledger.Outcome) voteResponse {
	return voteResponse{
		LawID:     out.LawID,
		VoteType:  out.State.VoteType(),
		Upvotes:   out.Upvotes,
		Downvotes: out.Downvotes,
	}
}

func RegisterVotes(laws fiber.Router, d Deps) {
	handler := VoteHandle{ledger: d.Ledger, limiter: d.Limiter, metrics: d.Metrics}

	laws.Post("/:id/vote", handler.Vote)
	laws.Delete("/:id/vote", handler.Unvote)
}

// Vote 投票；重复同向投票即取消
func (h *VoteHandle) Vote(c *fiber.Ctx) error {
	id, err := lawID(c)
	if err != nil {
		return err
	}
	voter, err := limit(c, h.limiter, h.metrics, ratelimit.ActionVote)
	if err != nil {
		return err
	}

	var req voteRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return apperr.InvalidArgument("Invalid request body")
	}

	out, err := h.ledger.ApplyVote(c.UserContext(), id, voter, req.VoteType)
	if err != nil {
		return err
	}
	h.metrics.Vote(string(out.Transition))
	return c.JSON(responseOf(out))
}

// Unvote 取消投票，没有投过票也返回成功
func (h *VoteHandle) Unvote(c *fiber.Ctx) error {
	id, err := lawID(c)
	if err != nil {
		return err
	}
	voter, err := limit(c, h.limiter, h.metrics, ratelimit.ActionVote)
	if err != nil {
		return err
	}

	out, err := h.ledger.RemoveVote(c.UserContext(), id, voter)
	if err != nil {
		return err
	}
	h.metrics.Vote(string(out.Transition))
	return c.JSON(fiber.Map{
		"law_id":    out.LawID,
		"upvotes":   out.Upvotes,
		"downvotes": out.Downvotes,
	})
}
