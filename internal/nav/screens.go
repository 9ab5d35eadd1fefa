package nav

import (
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/neuroteach/tutorbot/core/telegram/format"
	"github.com/neuroteach/tutorbot/core/telegram/keyboard"
	"github.com/neuroteach/tutorbot/internal/catalog"
	"github.com/neuroteach/tutorbot/internal/progress"
)

const defaultTonWallet = "UQAVTMHfwYcMn7ttJNXiJVaoA-jjRTeJHc2sjpkAVzc84oSY"

// premiumPriceTON is the monthly premium price shown on the payment screen.
const premiumPriceTON = 10

func (c *Controller) renderMain() View {
	var courseRow []keyboard.InlineBtn
	for _, course := range c.catalog.Courses() {
		courseRow = append(courseRow, keyboard.InlineBtn{
			Text:   course.Title,
			Unique: KeyCourse,
			Data:   course.ID,
		})
	}

	markup := keyboard.InlineButtonsRows(
		courseRow,
		[]keyboard.InlineBtn{
			{Text: "💰 Премиум доступ", Unique: KeyPremium},
			{Text: "👤 Мой профиль", Unique: KeyProfile},
		},
		[]keyboard.InlineBtn{
			{Text: "🌍 Фонд развития", Unique: KeyFund},
			{Text: "ℹ️ Помощь", Unique: KeyHelp},
		},
	)

	text := "🧠 *NeuroTeacher*\n\n" +
		"*Твой AI-наставник в мире нейротехнологий*\n\n" +
		"Готов прокачать твой интеллект? Выбери направление:"

	return View{Text: text, Keyboard: markup}
}

func (c *Controller) renderCourse(course catalog.Course, userID int64) View {
	snap := c.progress.Snapshot(userID)
	total := len(course.Lessons)
	completed := 0
	for _, lesson := range course.Lessons {
		if snap.IsCompleted(lesson) {
			completed++
		}
	}

	bar := progressBar(completed, total)

	var rows [][]keyboard.InlineBtn
	rows = append(rows, []keyboard.InlineBtn{
		{Text: fmt.Sprintf("📊 Прогресс: %s", bar), Unique: KeyCourse, Data: course.ID},
	})
	if ach := lastAchievement(snap.CompletedCount()); ach != "" {
		rows = append(rows, []keyboard.InlineBtn{
			{Text: "🏆 " + ach, Unique: KeyProfile},
		})
	}
	for i, lesson := range course.Lessons {
		status := "📖"
		if snap.IsCompleted(lesson) {
			status = "✅"
		}
		rows = append(rows, []keyboard.InlineBtn{{
			Text:   fmt.Sprintf("%s Урок %d: %s", status, i+1, lesson),
			Unique: KeyLesson,
			Data:   EncodeLesson(course.ID, i),
		}})
	}
	rows = append(rows, []keyboard.InlineBtn{
		{Text: "🔙 Назад к меню", Unique: KeyMain},
	})

	text := fmt.Sprintf(`*%s*

%s

🤖 *Ваш прогресс:* %d/%d уроков
%s

💫 *Выберите урок для начала:*`,
		format.EscapeMarkdown(course.Title), format.EscapeMarkdown(course.Description),
		completed, total, bar)

	return View{Text: text, Keyboard: keyboard.InlineButtonsRows(rows...)}
}

func (c *Controller) renderProfile(snap progress.Snapshot) View {
	markup := keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{
			{Text: "🔄 Сбросить прогресс", Unique: KeyReset},
		},
		[]keyboard.InlineBtn{
			{Text: "🔙 Назад к меню", Unique: KeyMain},
		},
	)

	text := fmt.Sprintf(`👤 *ВАШ ПРОФИЛЬ*

📊 Уровень: %d
🎯 Баллы: %d
📚 Пройдено уроков: %d

💫 *Продолжаем обучение!*`,
		snap.Level, snap.Score, snap.CompletedCount())

	return View{Text: text, Keyboard: markup}
}

func renderPremium(wallet string, userID int64) View {
	link := tonPaymentLink(wallet, userID, premiumPriceTON)

	markup := &tele.ReplyMarkup{}
	payBtn := markup.URL("💳 Активировать полный доступ", link)
	backBtn := markup.Data("🔙 Назад к меню", KeyMain)
	markup.Inline(markup.Row(payBtn), markup.Row(backBtn))

	text := fmt.Sprintf(`💰 *ПРЕМИУМ ДОСТУП*

Откройте полный потенциал NeuroTeacher:

✅ Все курсы и уроки
🎓 Персональный AI-наставник 24/7
📊 Детальная аналитика прогресса
🔮 Эксклюзивные материалы

⚡ *Инвестиция в развитие: %d TON/месяц*`, premiumPriceTON)

	return View{Text: text, Keyboard: markup}
}

func renderFund() View {
	markup := keyboard.InlineButtonsRows([]keyboard.InlineBtn{
		{Text: "🔙 Назад к меню", Unique: KeyMain},
	})

	text := `🌍 *ФОНД РАЗВИТИЯ*

📊 Распределение доходов:
• 70% — развитие платформы
• 20% — маркетинг и привлечение
• 10% — основателю

⚡ *Создаем будущее образования вместе*`

	return View{Text: text, Keyboard: markup}
}

func renderHelp() View {
	markup := keyboard.InlineButtonsRows([]keyboard.InlineBtn{
		{Text: "🔙 Назад к меню", Unique: KeyMain},
	})

	text := `ℹ️ *ПОМОЩЬ*

Как учиться с NeuroTeacher:

1. Выберите курс в главном меню
2. Откройте урок — учитель начнет диалог
3. Отвечайте текстом или жмите «Дальше»
4. Урок засчитывается после трёх шагов диалога

Команды: /start — главное меню, /stats — ваш профиль`

	return View{Text: text, Keyboard: markup}
}

func renderAskPrompt(lesson string) View {
	markup := keyboard.InlineButtonsRows([]keyboard.InlineBtn{
		{Text: "🔙 Назад к курсу", Unique: KeyBack},
	})

	text := fmt.Sprintf(`📚 *%s*

❓ Напишите свой вопрос по теме — учитель ответит в диалоге.`, format.EscapeMarkdown(lesson))

	return View{Text: text, Keyboard: markup}
}

func tonPaymentLink(wallet string, userID int64, amountTON int) string {
	nano := int64(amountTON) * 1_000_000_000
	return fmt.Sprintf("https://app.tonkeeper.com/transfer/%s?amount=%d&text=premium_%d", wallet, nano, userID)
}

func progressBar(completed, total int) string {
	if total <= 0 {
		return "0.0%"
	}
	percent := float64(completed) / float64(total) * 100
	return strings.Repeat("🟩", completed) +
		strings.Repeat("⬜", total-completed) +
		fmt.Sprintf(" %.1f%%", percent)
}

func lastAchievement(completedTotal int) string {
	switch {
	case completedTotal >= 4:
		return "🏆 Специалист"
	case completedTotal >= 2:
		return "🚀 Практик"
	case completedTotal >= 1:
		return "🎯 Начинающий"
	default:
		return ""
	}
}
