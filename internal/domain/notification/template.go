package notification

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"
)

// Translation 言語ごとの件名と本文
type Translation struct {
	Subject  string `json:"subject"`
	Body     string `json:"body"`
	HTMLBody string `json:"html_body,omitempty"`
}

// Rendered 描画済みの通知
type Rendered struct {
	Subject  string
	Body     string
	HTMLBody string
}

// Template 通知テンプレートエンティティ
type Template struct {
	notificationType NotificationType
	translations     map[string]Translation
	updatedAt        time.Time
}

// NewTemplate 新しいTemplateエンティティを作成
func NewTemplate(t NotificationType, translations map[string]Translation) (*Template, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: unknown type %s", ErrInvalidTemplate, t)
	}
	if len(translations) == 0 {
		return nil, fmt.Errorf("%w: at least one translation is required", ErrInvalidTemplate)
	}
	for lang, tr := range translations {
		if strings.TrimSpace(tr.Subject) == "" {
			return nil, fmt.Errorf("%w: subject is required for %s", ErrInvalidTemplate, lang)
		}
		if _, err := parse(tr.Subject); err != nil {
			return nil, fmt.Errorf("%w: subject for %s: %v", ErrInvalidTemplate, lang, err)
		}
		if _, err := parse(tr.Body); err != nil {
			return nil, fmt.Errorf("%w: body for %s: %v", ErrInvalidTemplate, lang, err)
		}
		if _, err := parse(tr.HTMLBody); err != nil {
			return nil, fmt.Errorf("%w: html body for %s: %v", ErrInvalidTemplate, lang, err)
		}
	}

	return &Template{
		notificationType: t,
		translations:     translations,
		updatedAt:        time.Now(),
	}, nil
}

// MustNewTemplate テスト用のTemplate作成
func MustNewTemplate(t NotificationType, translations map[string]Translation) *Template {
	tmpl, err := NewTemplate(t, translations)
	if err != nil {
		panic(err)
	}
	return tmpl
}

// RestoreTemplate 永続化された状態からTemplateを復元
func RestoreTemplate(t NotificationType, translations map[string]Translation, updatedAt time.Time) *Template {
	return &Template{
		notificationType: t,
		translations:     translations,
		updatedAt:        updatedAt,
	}
}

// Type 通知種類を返す
func (t *Template) Type() NotificationType {
	return t.notificationType
}

// Translations 言語ごとの翻訳を返す
func (t *Template) Translations() map[string]Translation {
	return t.translations
}

// UpdatedAt 更新日時を返す
func (t *Template) UpdatedAt() time.Time {
	return t.updatedAt
}

// Render 指定言語でテンプレートを描画する。翻訳がなければfallbackの言語を使う
func (t *Template) Render(language, fallback string, data map[string]interface{}) (*Rendered, error) {
	tr, ok := t.translations[language]
	if !ok {
		tr, ok = t.translations[fallback]
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s has no translation for %s", ErrTemplateNotFound, t.notificationType, language)
	}

	subject, err := execute(tr.Subject, data)
	if err != nil {
		return nil, fmt.Errorf("%w: subject of %s: %v", ErrTemplateRender, t.notificationType, err)
	}
	body, err := execute(tr.Body, data)
	if err != nil {
		return nil, fmt.Errorf("%w: body of %s: %v", ErrTemplateRender, t.notificationType, err)
	}
	htmlBody, err := execute(tr.HTMLBody, data)
	if err != nil {
		return nil, fmt.Errorf("%w: html body of %s: %v", ErrTemplateRender, t.notificationType, err)
	}

	// 件名に改行は含められない
	subject = strings.Join(strings.Fields(subject), " ")

	return &Rendered{Subject: subject, Body: body, HTMLBody: htmlBody}, nil
}

func parse(text string) (*template.Template, error) {
	return template.New("notification").Option("missingkey=zero").Parse(text)
}

func execute(text string, data map[string]interface{}) (string, error) {
	if text == "" {
		return "", nil
	}
	tmpl, err := parse(text)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
