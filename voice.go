package main

import (
	"context"
	"io"
	"os"
	"path"
	"strings"

	"github.com/pkg/errors"
	"github.com/sashabaranov/go-openai"
)

type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

type Synthesizer interface {
	Synthesize(ctx context.Context, text, outPath string) error
}

// openaiVoice does both directions of voice I/O through the OpenAI audio API.
type openaiVoice struct {
	client *openai.Client
	voice  openai.SpeechVoice
}

func newOpenAIVoice(apiKey, voice string) (*openaiVoice, error) {
	if len(apiKey) == 0 {
		return nil, errors.New("OPENAI_API_KEY not set. Please set it in environment or config.yaml")
	}
	if len(voice) == 0 {
		voice = string(openai.VoiceAlloy)
	}
	return &openaiVoice{client: openai.NewClient(apiKey), voice: openai.SpeechVoice(voice)}, nil
}

func (v *openaiVoice) Transcribe(ctx context.Context, audioPath string) (string, error) {
	resp, err := v.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: audioPath,
	})
	if err != nil {
		return "", errors.Wrapf(err, "transcription of %s failed", audioPath)
	}
	return strings.TrimSpace(resp.Text), nil
}

func (v *openaiVoice) Synthesize(ctx context.Context, text, outPath string) error {
	resp, err := v.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.TTSModel1,
		Input:          text,
		Voice:          v.voice,
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return errors.Wrap(err, "speech synthesis failed")
	}
	defer resp.Close()

	f, err := os.Create(outPath)
	if err != nil {
		return errors.Wrapf(err, "while creating %s", outPath)
	}
	if _, err := io.Copy(f, resp); err != nil {
		f.Close()
		return errors.Wrapf(err, "while writing %s", outPath)
	}
	return f.Close()
}

// voiceSession answers a spoken question with a spoken reply.
type voiceSession struct {
	in       Transcriber
	out      Synthesizer
	answer   func(ctx context.Context, query string) (string, error)
	audioDir string
	st       status
}

type voiceReply struct {
	Query     string
	Response  string
	AudioPath string
}

func responseAudioPath(dir, input string) string {
	base := path.Base(input)
	stem := strings.TrimSuffix(base, path.Ext(base))
	return path.Join(dir, "response_"+stem+".mp3")
}

// handle transcribes audioPath, answers the question and writes the spoken
// answer next to the other audio output.
func (v *voiceSession) handle(ctx context.Context, audioPath string) (voiceReply, error) {
	var r voiceReply
	v.st.progress("Transcribing %s", audioPath)
	query, err := v.in.Transcribe(ctx, audioPath)
	if err != nil {
		return r, err
	}
	if len(query) == 0 {
		return r, errors.Errorf("no speech recognized in %s", audioPath)
	}
	r.Query = query
	v.st.success("Heard: %s", query)

	r.Response, err = v.answer(ctx, query)
	if err != nil {
		return r, err
	}

	out := responseAudioPath(v.audioDir, audioPath)
	if err := v.out.Synthesize(ctx, r.Response, out); err != nil {
		return r, err
	}
	r.AudioPath = out
	v.st.success("Response audio written to %s", out)
	return r, nil
}
