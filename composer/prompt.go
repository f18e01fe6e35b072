package composer

import "fmt"

// PromptConfig holds the two prompt variants sent to the generative endpoint:
// classify-and-rewrite for a single article, and extract-multiple-articles
// for a raw page.
type PromptConfig struct {
	ClassifyPrompt ClassifyPromptFunc
	ExtractPrompt  ExtractPromptFunc
}

type ClassifyPromptFunc = func(title, content string) string

type ExtractPromptFunc = func(baseURL, pageText string) string

func DefaultPromptConfig() *PromptConfig {
	return &PromptConfig{
		ClassifyPrompt: func(title, content string) string {
			return "You are a news filter for both English and Chinese content." +
				"First, determine if an article is strictly about Artificial Intelligence based on the following rules: " +
				"1. The text explicitly contains the keyword 'AI' or '人工智能' or '大模型' in its title or body. " +
				"2. The article's title or body mentioned specific AI technologies (like machine learning, LLMs, 大模型), " +
				"AI products (like ChatGPT, Gemini, Sora), or major AI companies (like OpenAI, Google, Meta, Anthropic, NVIDIA). " +
				"Second, if the article IS AI-related, read the entire text and write a thorough, high-quality summary that captures the main content. " +
				"If it is NOT AI-related, the summary should be an empty string. " +
				`Respond ONLY with a JSON object like {"is_ai_related": <true_or_false>, "rewritten_content": "<A professional rewrite of the article if it is AI-related, otherwise an empty string>"}.` +
				"If not AI-related, rewritten_content should be an empty string. " +
				fmt.Sprintf(`Article Title: %q. Article Content: %s`, title, content)
		},
		ExtractPrompt: func(baseURL, pageText string) string {
			return "You are an expert news-finding AI. Analyze the text content of the provided webpage and identify all distinct news articles. " +
				"For each article you find, extract the following information:\n" +
				"1. `title`: The full title of the article.\n" +
				"2. `url`: The absolute URL link to the article. If the link is relative (e.g., '/news/story1'), you must combine it with the base URL of the page.\n" +
				"3. `summary`: A concise, one-paragraph summary of the article's main points.\n" +
				"4. `published_at`: The publication date and time in ISO 8601 format (YYYY-MM-DDTHH:MM:SSZ). " +
				"If you can only find a date, use the start of that day. If you cannot determine the date, use null.\n" +
				"Respond ONLY with a single JSON object containing a key `articles` which is a list of the article objects you found. " +
				"Each object in the list must have the keys `title`, `url`, `summary`, and `published_at`. " +
				"Do not include any articles that are clearly just ads or navigation links. If you find no articles, return an empty list.\n" +
				fmt.Sprintf("Base URL of the page for reference: %s\n", baseURL) +
				fmt.Sprintf("Webpage Text Content:\n%s", pageText)
		},
	}
}
