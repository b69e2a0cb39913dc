package main

import (
	"context"
	"os"
	"os/signal"
	"time"

	"moodbot/internal/adapters/generator"
	"moodbot/internal/adapters/handler"
	"moodbot/internal/adapters/sender"
	"moodbot/internal/adapters/storage"
	"moodbot/internal/adapters/template"
	"moodbot/internal/core/domain"
	"moodbot/internal/core/domain/command"
	"moodbot/internal/core/service"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

func main() {
	log.Info().Msg("starting moodbot...")

	viper.AddConfigPath(".")
	viper.SetConfigType("toml")

	log.Info().Msg("reading config file...")
	err := viper.ReadInConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("could not read config file")
	}

	var logLevel zerolog.Level

	switch viper.GetString("bot.log_level") {
	case "info":
		logLevel = zerolog.InfoLevel
	case "debug":
		logLevel = zerolog.DebugLevel
	default:
		logLevel = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(logLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	store, err := storage.New(viper.GetString("storage.path"))
	if err != nil {
		log.Panic().Err(err).Msg("failed opening storage")
	}
	defer store.Close()

	adminID := viper.GetInt64("bot.admin_id")
	defaultModelID := viper.GetString("chat.default_model_id")

	users := storage.NewUserStore(store, defaultModelID)
	moods := storage.NewMoodStore(store)
	generations := storage.NewGenerationStore(store)

	if err := moods.EnsureDefault(ctx, adminID); err != nil {
		log.Panic().Err(err).Msg("failed ensuring default mood")
	}

	var catalogModels []domain.ModelDescriptor
	if err := viper.UnmarshalKey("models", &catalogModels); err != nil {
		log.Panic().Err(err).Msg("invalid model catalog in config")
	}
	if domain.FindModelByID(catalogModels, defaultModelID) == nil {
		log.Panic().Str("modelId", defaultModelID).Msg("default model missing from catalog")
	}

	openRouter := generator.NewOpenRouter(
		viper.GetString("openrouter.api_key"),
		viper.GetString("openrouter.base_url"))
	catalog := generator.NewCatalog(
		viper.GetString("openrouter.base_url"),
		viper.GetString("openrouter.api_key"))

	estimator := service.NewTokenEstimator()
	filter := service.NewFilter(service.FilterParams{
		Estimator:      estimator,
		Moderator:      openRouter,
		TokenFamily:    service.ModelFamily(viper.GetString("bot.token_family")),
		MaxTokens:      viper.GetInt("bot.max_prompt_tokens"),
		BanWords:       viper.GetStringSlice("bot.ban_words"),
		OutputBanWords: viper.GetStringSlice("bot.output_ban_words"),
		CensorWords:    viper.GetStringSlice("bot.censor_words"),
	})

	templates := template.NewRegistry(os.DirFS(viper.GetString("templates.path")))
	inFlight := service.NewInFlight()

	tgToken := viper.GetString("telegram.bot_token")
	opts := []bot.Option{
		bot.WithDefaultHandler(noOpHandler),
	}

	b, err := bot.New(tgToken, opts...)
	if err != nil {
		log.Panic().Err(err).Msg("failed initializing telegram bot")
	}

	me, err := b.GetMe(ctx)
	if err != nil {
		log.Panic().Err(err).Msg("failed resolving telegram bot identity")
	}

	tgSender := sender.NewTelegramSender(b)
	vkSender := sender.NewVKSender(viper.GetString("vk.token"))
	messages := sender.NewRouter(tgSender, vkSender)

	registry := &command.Registry{}

	registry.Register(command.NewStart(users, messages, "!начать"), "начать", "/start")
	registry.Register(command.NewHelp(messages, "!aihelp"), "!команды")
	registry.Register(command.NewAI(command.AIParams{
		Users:       users,
		Moods:       moods,
		Generations: generations,
		Completer:   openRouter,
		Templates:   templates,
		Filter:      filter,
		InFlight:    inFlight,
		Sender:      messages,
		Models:      catalogModels,
		Command:     "!gpt",
	}), "!ai", ".ai")
	registry.Register(command.NewTokenize(estimator, messages, "!токены"), "!tokenize")
	registry.Register(command.NewSettings(users, moods, messages, catalogModels, "!настройки"),
		"!гптнастройки", "!settings")
	registry.Register(command.NewMoodList(moods, messages, "!муды"), "!moods")
	registry.Register(command.NewMood(command.MoodParams{
		Users:       users,
		Moods:       moods,
		Generations: generations,
		Filter:      filter,
		Sender:      messages,
		Command:     "!муд",
	}))
	registry.Register(command.NewMoodSet(users, moods, messages, "!выбрать муд"),
		"!setmood", "!поменять муд", "!установить муд")
	registry.Register(command.NewMoodCreate(users, moods, filter, messages, "!создать муд"), "!новый муд")
	registry.Register(command.NewMoodDelete(users, moods, messages, "!удалить муд"))
	registry.Register(command.NewMyMoods(users, moods, messages, "!мои муды"))
	registry.Register(command.NewPersona(users, filter, messages, "!персона"))
	registry.Register(command.NewMyPersona(users, messages, "!моя персона"))
	registry.Register(command.NewPersonaDelete(users, messages, "!удалить персону"))
	registry.Register(command.NewModelList(messages, catalogModels, "!модели"))
	registry.Register(command.NewModelSet(command.ModelSetParams{
		Users:   users,
		Catalog: catalog,
		Sender:  messages,
		Models:  catalogModels,
		Command: "!модель",
	}), "!выбрать модель")
	registry.Register(command.NewAccountDeleteWarning(users, moods, messages, "!удалить гпт"))
	registry.Register(command.NewAccountDelete(users, messages, "!точно удалить гпт"))

	timeout, err := time.ParseDuration(viper.GetString("openrouter.request_timeout"))
	if err != nil {
		log.Panic().Err(err).Msg("invalid request timeout in config")
	}

	tgHandler := handler.NewTelegram(registry, timeout, me.ID)
	b.RegisterHandler(bot.HandlerTypeMessageText, "!", bot.MatchTypePrefix, tgHandler.Handle)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/", bot.MatchTypePrefix, tgHandler.Handle)
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, "", bot.MatchTypePrefix, tgHandler.HandleCallback)

	vkHandler := handler.NewVK(registry, timeout, viper.GetString("vk.token"), viper.GetInt64("vk.group_id"))
	go func() {
		if err := vkHandler.Start(ctx); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("vk long poll stopped")
		}
	}()

	log.Info().Msg("bot listening")
	b.Start(ctx)
}

func noOpHandler(_ context.Context, _ *bot.Bot, _ *models.Update) {}
