package main

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"stonktip/pkg/jobs"
	"stonktip/pkg/ledger"
	"stonktip/pkg/state"
	"stonktip/pkg/tip"

	"github.com/gin-gonic/gin"
)

const unreadableMessage = "could not read this image"

// tipResponse is the JSON form of a tip with its display strings.
func tipResponse(t tip.Tip) gin.H {
	return gin.H{
		"hero_town":    t.HeroTown.String(),
		"current_turn": t.CurrentTurn,
		"target_turn":  t.TargetTurn,
		"price_change": t.PriceChange,
		"source_url":   t.SourceURL,
		"summary":      t.String(),
		"cell":         ledger.Cell(t),
	}
}

// submitTipHandler reads an uploaded screenshot synchronously.
func submitTipHandler(c *gin.Context) {
	channel := strings.TrimSpace(c.PostForm("channel"))
	if !cfg.ChannelAllowed(channel) {
		c.JSON(http.StatusForbidden, gin.H{"error": "channel not allowed"})
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file missing"})
		return
	}
	if file.Size > jobs.MaxImageBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file too large (max 20MB)"})
		return
	}
	if ct := file.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "image/") && ct != "application/octet-stream" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is not an image"})
		return
	}
	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cannot open upload"})
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cannot read upload"})
		return
	}
	sourceURL := strings.TrimSpace(c.PostForm("source_url"))
	if sourceURL == "" {
		sourceURL = "upload://" + file.Filename
	}

	res, err := intake.Submit(c.Request.Context(), jobs.Submission{Data: data, SourceURL: sourceURL, Channel: channel})
	if err != nil {
		appLog.Error("tip intake failed", "url", sourceURL, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store result"})
		return
	}
	if !res.Success {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": unreadableMessage, "source_url": sourceURL})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "tip": tipResponse(res.Tip)})
}

// submitTipURLHandler queues an image URL for the worker.
func submitTipURLHandler(c *gin.Context) {
	var req struct {
		URL     string `json:"url" binding:"required"`
		Channel string `json:"channel"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !cfg.ChannelAllowed(req.Channel) {
		c.JSON(http.StatusForbidden, gin.H{"error": "channel not allowed"})
		return
	}
	if enqueuer == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "url submission requires redis"})
		return
	}
	id, err := enqueuer.Enqueue(c.Request.Context(), req.URL, req.Channel)
	if err != nil {
		appLog.Error("enqueue failed", "url", req.URL, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "enqueue failed"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"job_id": id})
}

// parseTownParam resolves a town label or reports 400.
func parseTownParam(c *gin.Context, label string) (tip.HeroTown, bool) {
	town, ok := tip.ParseHeroTown(label)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown town " + strconv.Quote(label)})
	}
	return town, ok
}

func listTipsHandler(c *gin.Context) {
	f := ledger.Filter{Limit: 500}
	if v := c.Query("town"); v != "" {
		town, ok := parseTownParam(c, v)
		if !ok {
			return
		}
		f.Town = town
	}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 500 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be 1..500"})
			return
		}
		f.Limit = n
	}
	tips, err := tipLedger.List(c.Request.Context(), f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	out := make([]gin.H, 0, len(tips))
	for _, t := range tips {
		out = append(out, tipResponse(t))
	}
	c.JSON(http.StatusOK, out)
}

func getTipHandler(c *gin.Context) {
	town, ok := parseTownParam(c, c.Param("town"))
	if !ok {
		return
	}
	turn, err := strconv.Atoi(c.Param("turn"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "turn must be a number"})
		return
	}
	t, err := tipLedger.Get(c.Request.Context(), town, turn)
	writeLookup(c, t, err)
}

// nextTipHandler returns the first recorded price after the given turn.
func nextTipHandler(c *gin.Context) {
	town, ok := parseTownParam(c, c.Param("town"))
	if !ok {
		return
	}
	after, err := strconv.Atoi(c.DefaultQuery("after", "0"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "after must be a number"})
		return
	}
	t, err := tipLedger.Latest(c.Request.Context(), town, after)
	writeLookup(c, t, err)
}

func writeLookup(c *gin.Context, t tip.Tip, err error) {
	if errors.Is(err, ledger.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, tipResponse(t))
}

// failsHandler hands the channel's failed URLs to an editor and clears the list.
func failsHandler(c *gin.Context) {
	channel := c.Query("channel")
	if !cfg.ChannelAllowed(channel) {
		c.JSON(http.StatusForbidden, gin.H{"error": "channel not allowed"})
		return
	}
	urls, err := failedStore.DrainFailed(c.Request.Context(), channel)
	if err != nil {
		appLog.Error("drain failed urls", "channel", channel, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"channel": channel, "total": len(urls), "pages": state.Pages(urls, cfg.FailedURLsPerPage)})
}
