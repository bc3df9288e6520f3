package speech

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// maxChunkRunes is the longest text the translate_tts endpoint accepts per request.
const maxChunkRunes = 100

// TTSClient fetches MP3 speech from a translate_tts style HTTP endpoint.
type TTSClient struct {
	httpClient *http.Client
	endpoint   string
	lang       string
}

func NewTTSClient(endpoint, lang string, timeout time.Duration) *TTSClient {
	return &TTSClient{
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   endpoint,
		lang:       lang,
	}
}

// Synthesize returns the MP3 for text. Long text is requested in chunks and
// the MP3 frames are concatenated.
func (c *TTSClient) Synthesize(ctx context.Context, text string) ([]byte, error) {
	chunks := SplitText(text, maxChunkRunes)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("nothing to synthesize")
	}

	var audio bytes.Buffer
	for i, chunk := range chunks {
		if err := c.fetchChunk(ctx, &audio, chunk, i, len(chunks)); err != nil {
			return nil, fmt.Errorf("synthesize chunk %d/%d: %w", i+1, len(chunks), err)
		}
	}
	return audio.Bytes(), nil
}

func (c *TTSClient) fetchChunk(ctx context.Context, w io.Writer, chunk string, idx, total int) error {
	params := url.Values{}
	params.Set("ie", "UTF-8")
	params.Set("client", "tw-ob")
	params.Set("tl", c.lang)
	params.Set("q", chunk)
	params.Set("total", strconv.Itoa(total))
	params.Set("idx", strconv.Itoa(idx))
	params.Set("textlen", strconv.Itoa(utf8.RuneCountInString(chunk)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("tts endpoint returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("read audio: %w", err)
	}
	return nil
}

// SplitText breaks text into chunks of at most limit runes, on whitespace
// where possible. A single word longer than limit is cut.
func SplitText(text string, limit int) []string {
	var chunks []string
	var cur strings.Builder
	curLen := 0

	flush := func() {
		if curLen > 0 {
			chunks = append(chunks, cur.String())
			cur.Reset()
			curLen = 0
		}
	}

	for _, word := range strings.Fields(text) {
		runes := []rune(word)
		for len(runes) > limit {
			flush()
			chunks = append(chunks, string(runes[:limit]))
			runes = runes[limit:]
		}
		if len(runes) == 0 {
			continue
		}

		need := len(runes)
		if curLen > 0 {
			need++
		}
		if curLen+need > limit {
			flush()
			need = len(runes)
		}
		if curLen > 0 {
			cur.WriteByte(' ')
		}
		cur.WriteString(string(runes))
		curLen += need
	}
	flush()
	return chunks
}

// Synthesizer is the translate-and-speak collaborator: Telugu localization
// followed by text-to-speech.
type Synthesizer struct {
	client *TTSClient
}

func NewSynthesizer(client *TTSClient) *Synthesizer {
	return &Synthesizer{client: client}
}

func (s *Synthesizer) Speak(ctx context.Context, text string) ([]byte, error) {
	return s.client.Synthesize(ctx, Localize(text))
}
