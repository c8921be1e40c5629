package main

import (
	"fmt"

	"github.com/chadiek/interview-coach/internal/config"
	"github.com/chadiek/interview-coach/internal/interview"
	"github.com/chadiek/interview-coach/internal/llm"
	"github.com/chadiek/interview-coach/internal/transcript"
	"github.com/chadiek/interview-coach/internal/tts"
)

type providers struct {
	chat  interview.Chat
	stt   interview.Transcriber
	voice interview.Synthesizer
}

// newProviders builds the adapters selected by cfg. cfg must already be valid.
func newProviders(cfg config.Config) (providers, error) {
	p := providers{chat: llm.NewClient(cfg.GroqAPIKey, cfg.LLMBaseURL, cfg.ChatModel)}

	switch cfg.TranscriptionProvider {
	case config.TranscriptionWhisper:
		p.stt = transcript.NewWhisperClient(cfg.GroqAPIKey, cfg.LLMBaseURL, cfg.TranscriptionModel, cfg.ScratchDir)
	case config.TranscriptionAssemblyAI:
		p.stt = transcript.NewAssemblyAIClient(cfg.AssemblyAIKey)
	default:
		return providers{}, fmt.Errorf("unsupported transcription provider %q", cfg.TranscriptionProvider)
	}

	switch cfg.TTSProvider {
	case config.TTSOpenAI:
		p.voice = tts.NewOpenAIClient(cfg.GroqAPIKey, cfg.LLMBaseURL, cfg.TTSModel, cfg.TTSVoice)
	case config.TTSElevenLabs:
		p.voice = tts.NewElevenLabsClient(cfg.ElevenLabsKey, cfg.ElevenLabsVoiceID)
	case config.TTSDeepgram:
		p.voice = tts.NewDeepgramClient(cfg.DeepgramKey, cfg.DeepgramModel)
	case config.TTSNone:
		p.voice = tts.Nop{}
	default:
		return providers{}, fmt.Errorf("unsupported speech provider %q", cfg.TTSProvider)
	}
	return p, nil
}
