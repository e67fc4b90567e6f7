package stt

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/metadata"

	speechkit "github.com/yandex-cloud/go-genproto/yandex/cloud/ai/stt/v3"
)

const speechKitEndpoint = "stt.api.cloud.yandex.net:443"

// chunk size for streaming a window up, in samples.
const speechKitChunkSamples = 4096

type SpeechKitConfig struct {
	IamToken string
	FolderID string
	Language string
}

// SpeechKitClient recognizes one window at a time over the Yandex SpeechKit
// streaming API: the window is sent as a short LINEAR16 stream and the final
// alternatives are collected as segments.
type SpeechKitClient struct {
	client   speechkit.RecognizerClient
	conn     *grpc.ClientConn
	iamToken string
	folderID string
	language string
}

var _ Transcriber = (*SpeechKitClient)(nil)

func NewSpeechKitClient(config SpeechKitConfig) (*SpeechKitClient, error) {
	if config.IamToken == "" || config.FolderID == "" {
		return nil, fmt.Errorf("speechkit requires an IAM token and folder id")
	}
	if config.Language == "" {
		config.Language = "en-US"
	}

	conn, err := grpc.Dial(speechKitEndpoint, grpc.WithTransportCredentials(credentials.NewTLS(&tls.Config{})))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SpeechKit: %w", err)
	}

	return &SpeechKitClient{
		client:   speechkit.NewRecognizerClient(conn),
		conn:     conn,
		iamToken: config.IamToken,
		folderID: config.FolderID,
		language: config.Language,
	}, nil
}

func (s *SpeechKitClient) Transcribe(ctx context.Context, samples []float32, sampleRate int) ([]Segment, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("no samples provided")
	}

	md := metadata.Pairs(
		"authorization", "Bearer "+s.iamToken,
		"x-folder-id", s.folderID,
	)
	ctx = metadata.NewOutgoingContext(ctx, md)

	stream, err := s.client.RecognizeStreaming(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create streaming client: %w", err)
	}

	sessionOptions := &speechkit.StreamingRequest{
		Event: &speechkit.StreamingRequest_SessionOptions{
			SessionOptions: &speechkit.StreamingOptions{
				RecognitionModel: &speechkit.RecognitionModelOptions{
					AudioFormat: &speechkit.AudioFormatOptions{
						AudioFormat: &speechkit.AudioFormatOptions_RawAudio{
							RawAudio: &speechkit.RawAudio{
								AudioEncoding:     speechkit.RawAudio_LINEAR16_PCM,
								SampleRateHertz:   int64(sampleRate),
								AudioChannelCount: 1,
							},
						},
					},
					TextNormalization: &speechkit.TextNormalizationOptions{
						TextNormalization: speechkit.TextNormalizationOptions_TEXT_NORMALIZATION_ENABLED,
						ProfanityFilter:   false,
						LiteratureText:    false,
					},
					LanguageRestriction: &speechkit.LanguageRestrictionOptions{
						RestrictionType: speechkit.LanguageRestrictionOptions_WHITELIST,
						LanguageCode:    []string{s.language},
					},
					AudioProcessingType: speechkit.RecognitionModelOptions_REAL_TIME,
				},
			},
		},
	}
	if err := stream.Send(sessionOptions); err != nil {
		return nil, fmt.Errorf("failed to send session options: %w", err)
	}

	pcm := samplesToPCM(samples)
	chunkBytes := speechKitChunkSamples * 2
	for off := 0; off < len(pcm); off += chunkBytes {
		end := off + chunkBytes
		if end > len(pcm) {
			end = len(pcm)
		}
		req := &speechkit.StreamingRequest{
			Event: &speechkit.StreamingRequest_Chunk{
				Chunk: &speechkit.AudioChunk{Data: pcm[off:end]},
			},
		}
		if err := stream.Send(req); err != nil {
			return nil, fmt.Errorf("failed to send audio chunk: %w", err)
		}
	}
	if err := stream.CloseSend(); err != nil {
		return nil, fmt.Errorf("failed to close send side: %w", err)
	}

	var segments []Segment
	for {
		resp, err := stream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to receive response: %w", err)
		}
		if final := resp.GetFinal(); final != nil {
			for _, alternative := range final.GetAlternatives() {
				if text := strings.TrimSpace(alternative.GetText()); text != "" {
					segments = append(segments, Segment{Text: text})
				}
			}
		}
	}
	return segments, nil
}

func (s *SpeechKitClient) Close() error {
	return s.conn.Close()
}
