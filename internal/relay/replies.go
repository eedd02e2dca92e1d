package relay

import (
	"fmt"
	"strings"

	"github.com/zela-ai/zela/internal/model"
	"github.com/zela-ai/zela/internal/session"
)

// Fixed user-facing reply templates. The relay always answers in
// Vietnamese, matching the audience of the chat channel.
const (
	replyCleared = "🗑️ Đã xóa lịch sử chat. Bắt đầu cuộc trò chuyện mới!"

	replyUpstreamDown = "🤖 Xin lỗi, tôi đang gặp sự cố kỹ thuật. Vui lòng thử lại sau."

	replyImageFailed = "🖼️ Xin lỗi, tôi không thể phân tích ảnh này. Vui lòng thử lại sau."

	replyFileFailed = "📄 Xin lỗi, tôi không tải được tệp này. Vui lòng thử lại sau."

	replyFileUnsupported = "📄 Tôi chỉ đọc được các tệp văn bản (txt, md, csv, json, code...). " +
		"Tệp này không phải dạng văn bản nên tôi không đọc được."

	replyHelp = `📚 Hướng dẫn sử dụng:

🔹 Chat bình thường: gửi bất kỳ câu hỏi nào
🔹 /start - Khởi động bot và xem giới thiệu
🔹 /clear - Xóa lịch sử cuộc trò chuyện
🔹 /model - Xem và chọn mô hình AI
🔹 /help - Hiển thị hướng dẫn này

💡 Ví dụ:
• "Giải thích thuật toán bubble sort"
• "Viết code Python tính giai thừa"
• 📸 Gửi ảnh + "Ảnh này có gì?"
• 📄 Gửi tệp văn bản + "Tóm tắt giúp tôi"

🎯 Bot nhớ ngữ cảnh cuộc trò chuyện để trả lời chính xác hơn!`

	// Default captions when an attachment arrives without one.
	defaultImageCaption = "Phân tích ảnh này giúp tôi"
	defaultFileCaption  = "Tóm tắt nội dung tệp này giúp tôi"
)

// replyWelcome renders the /start greeting.
func replyWelcome(displayName string) string {
	if displayName == "" {
		displayName = "bạn"
	}
	return fmt.Sprintf(`Xin chào %s! 👋

🤖 Tôi là trợ lý AI trên Zalo. Tôi có thể:
• Trả lời câu hỏi về mọi chủ đề
• Viết và giải thích code
• Dịch thuật đa ngôn ngữ
• 📸 Phân tích và mô tả ảnh
• 📄 Đọc và tóm tắt tệp văn bản

📝 Lệnh hữu ích:
/help - Xem hướng dẫn
/clear - Xóa lịch sử chat
/model - Chọn mô hình AI`, displayName)
}

// replyModelList renders the /model overview with the current preference.
func replyModelList(catalog *model.Catalog, pref session.Preference) string {
	var b strings.Builder
	b.WriteString("🧠 Các mô hình hiện có:\n")
	for _, p := range catalog.Profiles() {
		b.WriteString(fmt.Sprintf("• %s - %s", p.Key, p.DisplayLabel))
		if p.Description != "" {
			b.WriteString(" (" + p.Description + ")")
		}
		b.WriteString("\n")
	}
	b.WriteString("\nĐang dùng: ")
	if pref.IsAuto() {
		b.WriteString("tự động")
	} else {
		b.WriteString(string(pref))
	}
	b.WriteString("\nChọn bằng: /model <tên> (hoặc /model auto)")
	return b.String()
}

// replyModelSet confirms a preference change.
func replyModelSet(pref session.Preference) string {
	if pref.IsAuto() {
		return "✅ Đã chuyển sang chế độ tự động chọn mô hình."
	}
	return fmt.Sprintf("✅ Đã chuyển sang mô hình %s.", pref)
}

// replyUnknownModel reports an invalid key and lists the valid ones.
func replyUnknownModel(key string, validKeys []string) string {
	return fmt.Sprintf("❌ Không có mô hình %q. Các mô hình hợp lệ: %s, auto.",
		key, strings.Join(validKeys, ", "))
}
