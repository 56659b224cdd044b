// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package share delivers a feature's share text to external channels.
//
// # Channels
//
// Telegram sends the text as one or more messages followed by the rendered
// document. Email sends a plain-text body with the document attached.
// Each channel reports its own outcome; a failing channel never stops the
// others and never fails the feature invocation that produced the text.
//
// # Documents
//
// Attachments are rendered from plain text into PDF (default) or DOCX.
// PDF pages are A4 with 40pt margins; long lines are cut rather than
// wrapped.
//
// # Usage
//
//	sharer := share.NewSharer(share.Config{
//		TelegramToken:  os.Getenv("TELEGRAM_BOT_TOKEN"),
//		TelegramChatID: os.Getenv("TELEGRAM_CHAT_ID"),
//		WorkDir:        "temp",
//	})
//	reports := sharer.Share(ctx, share.Message{Title: "Summary", Body: text}, share.ChannelTelegram)
//	for _, r := range reports {
//		fmt.Println(r.Text)
//	}
package share
