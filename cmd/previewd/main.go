// previewd drives the preview sampling worker over a small HTTP API:
// start and stop a run, poll its status and list the generated,
// time-aligned preview set.
package main

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/eyetrace/preview/internal/config"
	"github.com/eyetrace/preview/internal/log"
	"github.com/eyetrace/preview/internal/metrics"
	"github.com/eyetrace/preview/pkg/detect"
	"github.com/eyetrace/preview/pkg/preview"
	"github.com/eyetrace/preview/pkg/supervisor"
)

type startRequest struct {
	Folder   string `json:"folder"`
	Interval int    `json:"interval"`
	Format   string `json:"format"`
}

type recordJSON struct {
	Eye        int     `json:"eye"`
	Frame      int     `json:"frame"`
	Confidence float64 `json:"confidence"`
	File       string  `json:"file"`
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Error("loading config failed", "err", err)
		os.Exit(1)
	}
	log.Init(cfg.LogLevel)
	metrics.Serve(cfg.MetricsPort)

	sup := supervisor.New()
	stopTimeout := time.Duration(cfg.StopTimeoutSec) * time.Second

	app := fiber.New(fiber.Config{
		AppName:               "previewd",
		DisableStartupMessage: true,
	})

	api := app.Group("/api/preview")

	api.Post("/start", func(c *fiber.Ctx) error {
		req := startRequest{
			Folder:   cfg.Folder,
			Interval: cfg.FrameInterval,
			Format:   cfg.FrameFormat,
		}
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
		}

		format, err := preview.ParseFormat(req.Format)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		params, err := detect.LoadParams(cfg.DetectorConfigPath)
		if err != nil {
			log.Warn("ignoring detector settings", "err", err)
			params = map[string]any{}
		}

		err = sup.Start(supervisor.RunConfig{
			SourceURL:      cfg.SourceURL,
			Dir:            req.Folder,
			Every:          req.Interval,
			Format:         format,
			DetectorParams: params,
		})
		switch {
		case errors.Is(err, supervisor.ErrAlreadyRunning):
			return fiber.NewError(fiber.StatusConflict, err.Error())
		case err != nil:
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.JSON(fiber.Map{"state": sup.State().String()})
	})

	api.Post("/stop", func(c *fiber.Ctx) error {
		err := sup.RequestStop(stopTimeout)
		switch {
		case errors.Is(err, supervisor.ErrNotRunning):
			return fiber.NewError(fiber.StatusConflict, err.Error())
		case errors.Is(err, supervisor.ErrJoinTimeout):
			return fiber.NewError(fiber.StatusGatewayTimeout, err.Error())
		case err != nil:
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(fiber.Map{"state": sup.State().String()})
	})

	api.Get("/status", func(c *fiber.Ctx) error {
		messages := []fiber.Map{}
		for {
			status := sup.PollStatus()
			if status == nil {
				break
			}
			messages = append(messages, statusJSON(status))
		}
		return c.JSON(fiber.Map{
			"state":    sup.State().String(),
			"messages": messages,
		})
	})

	api.Get("/frames", func(c *fiber.Ctx) error {
		dir := c.Query("dir", cfg.Folder)
		set, err := preview.LoadAll(dir)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		tuples := make([][]recordJSON, 0, len(set))
		for _, tuple := range set {
			row := make([]recordJSON, 0, len(tuple))
			for _, record := range tuple {
				row = append(row, recordJSON{
					Eye:        record.Eye,
					Frame:      record.Frame,
					Confidence: record.Confidence,
					File:       record.FileName(),
				})
			}
			tuples = append(tuples, row)
		}
		return c.JSON(fiber.Map{"count": len(tuples), "tuples": tuples})
	})

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	// Live status feed: worker messages pushed to the client as they
	// arrive.
	app.Get("/ws/status", websocket.New(func(conn *websocket.Conn) {
		ticker := time.NewTicker(250 * time.Millisecond)
		defer ticker.Stop()
		for range ticker.C {
			for {
				status := sup.PollStatus()
				if status == nil {
					break
				}
				if err := conn.WriteJSON(statusJSON(status)); err != nil {
					return
				}
			}
		}
	}))

	log.Info("previewd listening", "port", cfg.ListenPort, "source", cfg.SourceURL)
	if err := app.Listen(":" + strconv.Itoa(cfg.ListenPort)); err != nil {
		log.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func statusJSON(status *supervisor.Status) fiber.Map {
	if status.Err != nil {
		return fiber.Map{"error": status.Err.Error()}
	}
	return fiber.Map{"message": status.Text}
}
