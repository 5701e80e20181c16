package web

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderMarkdown_EmptyInput(t *testing.T) {
	assert.Equal(t, "", RenderMarkdown(""))
}

func TestRenderMarkdown_PlainText(t *testing.T) {
	result := RenderMarkdown("hello world")
	assert.Contains(t, result, "hello world")
}

func TestRenderMarkdown_Bold(t *testing.T) {
	result := RenderMarkdown("**Stage II** options")
	assert.Contains(t, result, "<strong>Stage II</strong>")
}

func TestRenderMarkdown_List(t *testing.T) {
	result := RenderMarkdown("- a lump\n- skin changes")
	assert.Contains(t, result, "<li>a lump</li>")
	assert.Contains(t, result, "<li>skin changes</li>")
}

func TestRenderMarkdown_Link(t *testing.T) {
	result := RenderMarkdown("[guideline](https://example.com)")
	assert.Contains(t, result, `href="https://example.com"`)
	assert.Contains(t, result, `rel="nofollow`)
	assert.Contains(t, result, "guideline</a>")
}

func TestRenderMarkdown_SanitizesScript(t *testing.T) {
	result := RenderMarkdown(`<script>alert("xss")</script>`)
	assert.NotContains(t, result, "<script>")
}

func TestRenderMarkdown_HardWraps(t *testing.T) {
	result := RenderMarkdown("line one\nline two")
	assert.Contains(t, result, "<br")
}

func TestRenderMarkdown_GFMTable(t *testing.T) {
	result := RenderMarkdown("| a | b |\n|---|---|\n| 1 | 2 |")
	assert.Contains(t, result, "<table>")
}
