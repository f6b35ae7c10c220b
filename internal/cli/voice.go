package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"calma-service/internal/config"
	"calma-service/internal/infra/memory"
	redisstore "calma-service/internal/infra/redis"
	"calma-service/internal/logger"
	"calma-service/internal/voice"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewVoiceCmd fetches a voice demo through the relay and writes it to a file.
func NewVoiceCmd(configPath *string) *cobra.Command {
	var (
		relayURL string
		voiceID  string
		outPath  string
	)
	cmd := &cobra.Command{
		Use:   "voice",
		Short: "Play a voice demo through the TTS relay into an MP3 file",
		RunE: func(cmd *cobra.Command, args []string) error {
			option, ok := voice.LookupOption(voiceID)
			if !ok {
				return fmt.Errorf("unknown voice %q (choose one of %s)", voiceID, strings.Join(voice.OptionIDs(), ", "))
			}
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			log := logger.New(cfg.Log.Level, cfg.Log.Format)
			defer func() { _ = log.Sync() }()

			if outPath == "" {
				outPath = voiceID + ".mp3"
			}
			cacheTTL := config.TTLDuration(cfg.Audio.CacheTTL, time.Hour)
			var cache voice.AudioCache = memory.NewAudioCache(cacheTTL, cfg.Audio.MaxEntries)
			if cfg.Redis.Addr != "" {
				client := redis.NewClient(&redis.Options{
					Addr:     cfg.Redis.Addr,
					Password: cfg.Redis.Password,
					DB:       cfg.Redis.DB,
				})
				defer client.Close()
				cache = redisstore.NewAudioCache(client, cacheTTL)
			}

			fetcher := voice.NewFetcher(relayURL, voice.DemoScripts, cache, nil, log)
			player := voice.NewPlayer(fetcher, voice.FileSink{Path: outPath}, log)
			if !player.SelectVoice(voiceID) {
				return fmt.Errorf("voice selection refused")
			}
			log.Info("playing voice demo", zap.String("voice", option.ID), zap.String("label", option.Label))
			return playDemo(cmd.Context(), player, log, outPath)
		},
	}
	cmd.Flags().StringVar(&relayURL, "relay", "http://localhost:8080/api/tts", "TTS relay endpoint")
	cmd.Flags().StringVar(&voiceID, "voice", voice.DefaultVoice, "voice identifier ("+strings.Join(voice.OptionIDs(), ", ")+")")
	cmd.Flags().StringVar(&outPath, "out", "", "output MP3 path (default <voice>.mp3)")
	return cmd
}

func playDemo(ctx context.Context, player *voice.Player, log *zap.Logger, outPath string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := player.Play(ctx, player.Voice()); err != nil {
		return err
	}
	if err := player.Wait(ctx); err != nil {
		player.Stop()
		return err
	}
	if player.State() == voice.StateError {
		return player.Err()
	}
	log.Info("voice demo written", zap.String("voice", player.Voice()), zap.String("path", outPath))
	return nil
}
