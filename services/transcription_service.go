package services

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/echoflow-solutions/carescribe-api/config"
	"github.com/echoflow-solutions/carescribe-api/db"
	apiError "github.com/echoflow-solutions/carescribe-api/errors"
	"github.com/echoflow-solutions/carescribe-api/services/ai"
)

// TranscriptionService turns uploaded audio segments into text and folds the
// text into the active conversation transcript.
type TranscriptionService interface {
	TranscribeSegment(ctx context.Context, userID uint, sessionID string, file multipart.File, header *multipart.FileHeader) (*TranscriptionResult, error)
}

type TranscriptionResult struct {
	Text       string `json:"text"`
	Transcript string `json:"transcript"`
	AudioURL   string `json:"audio_url,omitempty"`
}

type transcriptionService struct {
	transcriber   ai.Transcriber
	conversations ConversationService
	media         db.MediaRepository
	conf          *config.Config
}

func NewTranscriptionService(transcriber ai.Transcriber, conversations ConversationService, media db.MediaRepository, conf *config.Config) TranscriptionService {
	return &transcriptionService{
		transcriber:   transcriber,
		conversations: conversations,
		media:         media,
		conf:          conf,
	}
}

var audioExtensions = map[string]bool{
	".mp3":  true,
	".mp4":  true,
	".m4a":  true,
	".wav":  true,
	".webm": true,
	".ogg":  true,
}

// transcriptionPrompt biases the model toward the vocabulary of disability
// support incident notes.
const transcriptionPrompt = "Incident report for a disability support participant. May mention medication names, PRN, behaviours of concern, seizures, staff names."

func (t *transcriptionService) TranscribeSegment(ctx context.Context, userID uint, sessionID string, file multipart.File, header *multipart.FileHeader) (*TranscriptionResult, error) {
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !audioExtensions[ext] {
		return nil, apiError.New(fmt.Sprintf("unsupported audio format %q", ext), 400)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(file); err != nil {
		return nil, apiError.New("could not read audio upload", 400)
	}
	if buf.Len() == 0 {
		return nil, apiError.New("empty audio upload", 400)
	}

	audio := buf.Bytes()
	text, err := t.transcriber.Transcribe(ctx, bytes.NewReader(audio), header.Filename, "en", transcriptionPrompt)
	if err != nil {
		log.Printf("transcription failed for session %s: %v", sessionID, err)
		return nil, apiError.ErrInternalServerError
	}
	text = strings.TrimSpace(text)

	result := &TranscriptionResult{Text: text}

	if text != "" {
		session, err := t.conversations.AppendTranscript(userID, sessionID, text)
		if err == nil {
			result.Transcript = session.CurrentAnswer
		} else {
			// No live session just means a standalone transcription call.
			result.Transcript = text
		}
	}

	// Archiving is best effort; the text is already delivered.
	if t.conf.AwsBucket != "" {
		key := fmt.Sprintf("audio/%d/%s/%d%s", userID, sessionID, time.Now().UnixNano(), ext)
		url, err := t.media.UploadBytesToS3(audio, t.conf.AwsBucket, key, header.Header.Get("Content-Type"))
		if err != nil {
			log.Printf("could not archive audio segment %s: %v", key, err)
		} else {
			result.AudioURL = url
		}
	}

	return result, nil
}
