package i18n

import (
	"fmt"

	"github.com/openingclouds/internal/constants"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"
)

const localeHeader = "X-Locale"

// localeMatcher 与 constants.SupportedLocales 顺序一致，首项为默认语言
var localeMatcher = language.NewMatcher([]language.Tag{
	language.MustParse(constants.LocaleZhCN),
	language.MustParse(constants.LocaleEnUS),
})

// ResolveLocale 从请求头解析语言，顺序：X-Locale > Accept-Language > 默认中文
func ResolveLocale(c *gin.Context) string {
	if c == nil || c.Request == nil {
		return constants.LocaleZhCN
	}
	if tag, err := language.Parse(c.GetHeader(localeHeader)); err == nil {
		if locale := matchLocale(tag); locale != "" {
			return locale
		}
	}
	if tags, _, err := language.ParseAcceptLanguage(c.GetHeader("Accept-Language")); err == nil {
		if locale := matchLocale(tags...); locale != "" {
			return locale
		}
	}
	return constants.LocaleZhCN
}

func matchLocale(tags ...language.Tag) string {
	if len(tags) == 0 {
		return ""
	}
	_, index, confidence := localeMatcher.Match(tags...)
	if confidence == language.No || index < 0 || index >= len(constants.SupportedLocales) {
		return ""
	}
	return constants.SupportedLocales[index]
}

// T 获取翻译文本，缺失时回退到中文，再回退到 key 本身
func T(locale, key string) string {
	if catalog, ok := messages[locale]; ok {
		if msg, ok := catalog[key]; ok {
			return msg
		}
	}
	if msg, ok := messages[constants.LocaleZhCN][key]; ok {
		return msg
	}
	return key
}

// Sprintf 获取带参数的翻译文本
func Sprintf(locale, key string, args ...interface{}) string {
	return fmt.Sprintf(T(locale, key), args...)
}
