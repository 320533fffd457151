//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/lumee/internal/bootstrap"
	"github.com/yanqian/lumee/internal/domain/assistant"
	"github.com/yanqian/lumee/internal/domain/auth"
	"github.com/yanqian/lumee/internal/infra/config"
	"github.com/yanqian/lumee/internal/infra/llm/chatgpt"
	httpiface "github.com/yanqian/lumee/internal/interface/http"
	"github.com/yanqian/lumee/pkg/logger"
	"github.com/yanqian/lumee/pkg/metrics"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		metrics.NewRecorder,
		provideAssistantConfig,
		provideAuthConfig,
		provideHTTPClient,
		provideChatGPTClient,
		provideOpenWeatherClient,
		provideAmbeeClient,
		provideKakaoGeocoder,
		provideWeatherGateway,
		provideGeoResolver,
		provideTokenCounter,
		provideConversationStore,
		provideProfileRepository,
		assistant.NewOrchestrator,
		assistant.NewService,
		auth.NewService,
		wire.Bind(new(assistant.ChatClient), new(*chatgpt.Client)),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewScheduler,
		bootstrap.NewApp,
	)
	return nil, nil
}
