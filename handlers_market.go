package main

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"stonktip/pkg/ledger"
	"stonktip/pkg/market"
	"stonktip/pkg/tip"

	"github.com/gin-gonic/gin"
)

// priceSource is satisfied by *ledger.Ledger.
type priceSource interface {
	Prices(ctx context.Context) (map[tip.HeroTown]map[int]int, error)
	List(ctx context.Context, f ledger.Filter) ([]tip.Tip, error)
}

var (
	boardSource priceSource
	roundClock  market.Clock
	now         = time.Now
)

func newRoundClock() market.Clock {
	return market.Clock{
		Start:   time.Unix(int64(cfg.RoundStart), 0),
		Length:  time.Duration(cfg.RoundMinutes) * time.Minute,
		MaxTurn: cfg.MaxTurn,
	}
}

// loadBoard builds the price board for the running round, replying 503 without a round
// schedule and 500 when the ledger cannot be read.
func loadBoard(c *gin.Context) (*market.Board, bool) {
	if !cfg.RoundsConfigured() || boardSource == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "round schedule not configured"})
		return nil, false
	}
	ctx := c.Request.Context()
	prices, err := boardSource.Prices(ctx)
	if err != nil {
		appLog.Error("load prices", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return nil, false
	}
	tips, err := boardSource.List(ctx, ledger.Filter{})
	if err != nil {
		appLog.Error("load tips", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return nil, false
	}
	return market.NewBoard(roundClock.Current(now()), roundClock.MaxTurn, prices, tips), true
}

// writeReport replies with the report and its chat message. note, when set, leads the message.
func writeReport(c *gin.Context, r market.Report, note string, invalid []string) {
	msg := r.Message()
	if note != "" {
		msg = note + "\n" + msg
	}
	out := gin.H{"report": r, "message": msg}
	if len(invalid) > 0 {
		out["invalid"] = invalid
	}
	c.JSON(http.StatusOK, out)
}

// queryList collects a repeated or comma separated query parameter.
func queryList(c *gin.Context, key string) []string {
	var out []string
	for _, v := range c.QueryArray(key) {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func roundHandler(c *gin.Context) {
	b, ok := loadBoard(c)
	if !ok {
		return
	}
	writeReport(c, b.Round(), "", nil)
}

func bestBuyHandler(c *gin.Context) {
	b, ok := loadBoard(c)
	if !ok {
		return
	}
	writeReport(c, b.BestBuy(), "", nil)
}

// targetBuyHandler answers ?turns=1,3 with the best growth over each number of rounds.
func targetBuyHandler(c *gin.Context) {
	args := queryList(c, "turns")
	if len(args) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": market.MissingTurnsMessage()})
		return
	}
	turns, invalid := market.ParseTurns(args)
	if len(turns) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": market.InvalidTurnsMessage(invalid), "invalid": invalid})
		return
	}
	b, ok := loadBoard(c)
	if !ok {
		return
	}
	note := ""
	if len(invalid) > 0 {
		note = market.InvalidTurnsMessage(invalid)
	}
	writeReport(c, b.TargetBuy(turns), note, invalid)
}

// forecastHandler answers ?town=celine,fergus or ?town=all with each town's next known price.
func forecastHandler(c *gin.Context) {
	args := queryList(c, "town")
	if len(args) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": market.MissingTownsMessage()})
		return
	}
	towns, invalid := market.ParseTowns(args)
	if len(towns) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": market.InvalidTownsMessage(invalid), "invalid": invalid})
		return
	}
	b, ok := loadBoard(c)
	if !ok {
		return
	}
	note := ""
	if len(invalid) > 0 {
		note = market.InvalidTownsMessage(invalid)
	}
	writeReport(c, b.Tips(towns), note, invalid)
}

// setPriceHandler records the observed price of a town at a turn.
func setPriceHandler(c *gin.Context) {
	town, ok := parseTownParam(c, c.Param("town"))
	if !ok {
		return
	}
	turn, err := strconv.Atoi(c.Param("turn"))
	if err != nil || turn < 1 || (cfg.MaxTurn > 0 && turn > cfg.MaxTurn) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "turn out of range"})
		return
	}
	var req struct {
		Price int `json:"price" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Price <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "price must be positive"})
		return
	}
	username, _ := c.Get("username")
	editor, _ := username.(string)
	if err := tipLedger.SetPrice(c.Request.Context(), town, turn, req.Price, editor); err != nil {
		appLog.Error("set price", "town", town.String(), "turn", turn, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store price"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"hero_town": town.String(), "turn": turn, "price": req.Price})
}
