package copywriter

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"salesdash/server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type fakeModels struct {
	model    string
	prompt   string
	deadline bool
	reply    string
	err      error
}

func (f *fakeModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	_, f.deadline = ctx.Deadline()
	for _, c := range contents {
		for _, part := range c.Parts {
			f.prompt += part.Text
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: genai.NewContentFromText(f.reply, genai.RoleModel)}},
	}, nil
}

func sampleProperty() *models.Property {
	return &models.Property{
		URL:         "https://example.com/house/1",
		Title:       "北谷町美浜 新築戸建",
		Category:    models.CategoryHouse,
		Price:       "4,980万円",
		CompanyName: "美浜不動産",
		Attributes: map[string]string{
			"所在地":  "沖縄県北谷町美浜1-2-3",
			"間取り":  "4LDK",
			"価格":   "4,980万円",
			"設備":   "オール電化",
			"ペット可": "相談",
		},
	}
}

func TestResolveModel(t *testing.T) {
	tests := []struct {
		key     string
		want    string
		wantErr bool
	}{
		{key: "", want: "gemini-3-pro-preview"},
		{key: "gemini-3-pro", want: "gemini-3-pro-preview"},
		{key: "gemini-2.5-flash", want: "gemini-2.5-flash"},
		{key: "gpt-4o-mini", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, err := ResolveModel(tt.key)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownModel)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestModels(t *testing.T) {
	assert.Equal(t, []string{"gemini-2.5-flash", "gemini-2.5-pro", "gemini-3-pro"}, Models())
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt(sampleProperty())

	assert.Contains(t, prompt, "物件名: 北谷町美浜 新築戸建")
	assert.Contains(t, prompt, "種別: 売買 / 戸建")
	assert.Contains(t, prompt, "エリア: 北谷町")
	assert.Contains(t, prompt, "- 間取り: 4LDK")

	// highlighted keys precede the rest, which are sorted
	assert.Less(t, strings.Index(prompt, "- 価格"), strings.Index(prompt, "- 所在地"))
	assert.Less(t, strings.Index(prompt, "- 間取り"), strings.Index(prompt, "- ペット可"))
	assert.Less(t, strings.Index(prompt, "- ペット可"), strings.Index(prompt, "- 設備"))
	assert.Equal(t, prompt, BuildPrompt(sampleProperty()))
}

func TestBuildPrompt_UnknownArea(t *testing.T) {
	prompt := BuildPrompt(&models.Property{Title: "駐車場", Category: models.CategoryYard})
	assert.NotContains(t, prompt, "エリア:")
	assert.Contains(t, prompt, "種別: 賃貸 / 月極駐車場")
}

func TestGeminiGenerator_Generate(t *testing.T) {
	fake := &fakeModels{reply: "  海まで徒歩5分の新築戸建\n本文  "}
	g := newGenerator(fake, "", time.Minute, nil)

	text, err := g.Generate(context.Background(), sampleProperty(), "gemini-2.5-pro")
	require.NoError(t, err)

	assert.Equal(t, "海まで徒歩5分の新築戸建\n本文", text)
	assert.Equal(t, "gemini-2.5-pro", fake.model)
	assert.True(t, fake.deadline)
	assert.Contains(t, fake.prompt, "北谷町美浜 新築戸建")
}

func TestGeminiGenerator_DefaultModel(t *testing.T) {
	fake := &fakeModels{reply: "copy"}
	g := newGenerator(fake, "gemini-2.5-flash", 0, nil)

	_, err := g.Generate(context.Background(), sampleProperty(), "")
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.5-flash", fake.model)
	assert.False(t, fake.deadline)
}

func TestGeminiGenerator_Errors(t *testing.T) {
	t.Run("unknown model", func(t *testing.T) {
		fake := &fakeModels{reply: "copy"}
		g := newGenerator(fake, "", 0, nil)

		_, err := g.Generate(context.Background(), sampleProperty(), "claude")
		assert.ErrorIs(t, err, ErrUnknownModel)
		assert.Empty(t, fake.model)
	})

	t.Run("api failure", func(t *testing.T) {
		g := newGenerator(&fakeModels{err: errors.New("quota exceeded")}, "", 0, nil)

		_, err := g.Generate(context.Background(), sampleProperty(), "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "quota exceeded")
	})

	t.Run("empty reply", func(t *testing.T) {
		g := newGenerator(&fakeModels{reply: "   "}, "", 0, nil)

		_, err := g.Generate(context.Background(), sampleProperty(), "")
		assert.Error(t, err)
	})
}
