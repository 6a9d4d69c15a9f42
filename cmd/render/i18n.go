package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Table headings
		"MAG":      "規模",
		"OFFSET":   "方位",
		"LOCATION": "場所",
		"DATE":     "日付",
		"TIME":     "時刻",

		// Runtime messages
		"Wrote %d rows to %s":  "%d 行を %s に書き込みました",
		"render version %s":    "render バージョン %s",
		"No earthquakes found": "地震はありません",

		// Error messages
		"Unsupported language: %s":        "未対応の言語です: %s",
		"Unknown time zone: %s":           "不明なタイムゾーンです: %s",
		"Failed to load colour table: %s": "カラーテーブルの読み込みに失敗しました: %s",
		"Failed to read %s: %s":           "%s の読み込みに失敗しました: %s",
		"Failed to parse %s: %s":          "%s の解析に失敗しました: %s",
		"Failed to write %s: %s":          "%s の書き込みに失敗しました: %s",
	})
}
