package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kimhons/ai-writing-platform-sub000/internal/config"
	"github.com/kimhons/ai-writing-platform-sub000/pkg/router"
	"github.com/kimhons/ai-writing-platform-sub000/pkg/worker"
)

// routeRequest is the debug command's stdin shape: the routing-relevant
// subset of the §6.3 WorkflowRequest contract.
type routeRequest struct {
	TaskKind          string `json:"task_kind"`
	Content           string `json:"content"`
	Context           string `json:"context"`
	PermissionLevel   string `json:"permission_level"`
	Urgency           string `json:"urgency"`
	VerificationLevel string `json:"verification_level"`
	ContentType       string `json:"content_type"`
	Audience          string `json:"audience"`
	PreserveVoice     bool   `json:"preserve_voice"`
	CorrectionLevel   string `json:"correction_level"`
}

var routeCmd = &cobra.Command{
	Use:   "route",
	Short: "run the Router alone against a request read from stdin and print the RoutingDecision",
	RunE: func(cmd *cobra.Command, args []string) error {
		var req routeRequest
		if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
			return fmt.Errorf("route: decoding stdin: %w", err)
		}

		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		reg := worker.NewRegistry()
		generate := func(ctx context.Context, prompt string, maxTokens int) (string, error) {
			return "", fmt.Errorf("route: no generation backend configured for the debug command")
		}
		if err := reg.Register(worker.NewGeneralist(generate, cfg.Scheduler.DefaultTaskTimeout, nil)); err != nil {
			return err
		}

		rt := router.New(reg, nil, cfg.Permissions.ElevateOnDestructiveIntent, nil)

		decision := rt.Route(context.Background(), router.Request{
			TaskKind:          req.TaskKind,
			Content:           req.Content,
			Context:           req.Context,
			PermissionLevel:   router.PermissionLevel(req.PermissionLevel),
			Urgency:           router.Urgency(req.Urgency),
			VerificationLevel: router.VerificationLevel(req.VerificationLevel),
			ContentType:       router.ContentType(req.ContentType),
			Audience:          req.Audience,
			PreserveVoice:     req.PreserveVoice,
			CorrectionLevel:   router.CorrectionLevel(req.CorrectionLevel),
		})

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(decision)
	},
}
