package llm

import "fmt"

// FeedbackModel is the fixed model identifier used for resume feedback.
// Feedback scoring must stay comparable across records, so this is pinned
// rather than following the configured chat model. Providers that cannot
// serve this id resolve it to their own fixed feedback model.
const FeedbackModel = "gpt-5-mini"

// FeedbackSystemPrompt instructs the model to act as a resume reviewer and
// reply with the exact JSON feedback shape the record store persists.
const FeedbackSystemPrompt = `You are an expert in ATS (Applicant Tracking Systems) and resume analysis.
Analyze and rate the resume you are given and suggest how to improve it.
The rating can be low if the resume is bad.
Be thorough and detailed. Don't be afraid to point out any mistakes or areas for improvement.
If there is a lot to improve, don't hesitate to give low scores.
Take the job description into account if one is provided.
Return ONLY a JSON object, without any other text or backticks, in this exact format:
{
  "overallScore": number (0-100),
  "ATS": {"score": number (0-100), "tips": [{"type": "positive" | "improvement", "tip": string}]},
  "toneAndStyle": {"score": number (0-100), "tips": [{"type": "positive" | "improvement", "tip": string, "explanation": string}]},
  "content": {"score": number (0-100), "tips": [{"type": "positive" | "improvement", "tip": string, "explanation": string}]},
  "structure": {"score": number (0-100), "tips": [{"type": "positive" | "improvement", "tip": string, "explanation": string}]},
  "skills": {"score": number (0-100), "tips": [{"type": "positive" | "improvement", "tip": string, "explanation": string}]}
}
Provide 3-4 tips per category.`

// FeedbackInstruction builds the per-request user instruction from the job
// context captured at upload time.
func FeedbackInstruction(jobTitle, jobDescription string) string {
	return fmt.Sprintf("The candidate is applying for the role: %s\nJob description:\n%s", jobTitle, jobDescription)
}

// Img2TxtPrompt asks the model to transcribe visible text from an image.
const Img2TxtPrompt = "Extract all readable text from this image. Return only the extracted text, with no commentary."
