package rules

import "github.com/starford/virtualta/internal/models"

const (
	answerGPTModel = "You must use `gpt-3.5-turbo-0125`, even if the AI Proxy only supports `gpt-4o-mini`. " +
		"Use the OpenAI API directly for this question. The assignment specifically requires " +
		"gpt-3.5-turbo-0125 for consistency and evaluation purposes."
	answerPythonSetup = "Make sure to use Python 3.8+ and install required packages using pip. " +
		"Common issues include version conflicts and missing dependencies. Check your environment setup " +
		"and ensure all dependencies are properly installed."
	answerVisualization = "Use appropriate chart types, clear labels, and proper color schemes. " +
		"Consider matplotlib, seaborn, or plotly for creating effective visualizations in your assignments. " +
		"Consider the audience and purpose of your visualization."
	answerSubmission = "Follow proper file formats, naming conventions, and include required documentation " +
		"when submitting assignments. Make sure to test your code before submission and follow the specified " +
		"format requirements."
	answerDockerPodman = "While Docker is acceptable and widely used, Podman is recommended for the TDS course. " +
		"Podman offers better security with rootless containers and is more aligned with modern container " +
		"practices. If you're familiar with Docker, the transition to Podman is straightforward as they share " +
		"similar commands."
	answerDashboard = "If a student scores 10/10 on GA4 as well as a bonus, it would appear as '110' on the " +
		"dashboard, representing 110% or 11 points out of 10 possible points. The dashboard shows the total " +
		"score including bonus points."
	answerExam = "I don't have information about the TDS Sep 2025 end-term exam schedule as this information " +
		"is not yet available. Please check the official course announcements or contact the course " +
		"coordinators for the most up-to-date exam schedule information."
	answerScreenshot = "I can't read text inside attached images. Please paste the exact error message or " +
		"code as text in your question, or post the screenshot on the course discourse forum so a TA can look at it."
)

var (
	linksGPTModel = []models.Link{
		// Added so gpt answers always carry the thread url itself; the text is the thread title.
		{URL: "https://discourse.onlinedegree.iitm.ac.in/t/ga5-question-8-clarification/155939", Text: "GA5 Question 8 Clarification"},
		{URL: "https://discourse.onlinedegree.iitm.ac.in/t/ga5-question-8-clarification/155939/4", Text: "Use the model that's mentioned in the question."},
		{URL: "https://discourse.onlinedegree.iitm.ac.in/t/ga5-question-8-clarification/155939/3", Text: "My understanding is that you just have to use a tokenizer, similar to what Prof. Anand used, to get the number of tokens and multiply that by the given rate."},
	}
	linksDashboard = []models.Link{
		{URL: "https://discourse.onlinedegree.iitm.ac.in/t/ga4-data-sourcing-discussion-thread-tds-jan-2025/165959/388", Text: "GA4 Data Sourcing Discussion - Dashboard Scoring"},
	}
	linksDocker = []models.Link{
		{URL: "https://tds.s-anand.net/#/docker", Text: "Docker and Containerization Guide"},
		{URL: "https://discourse.onlinedegree.iitm.ac.in/t/docker-podman-discussion/155943", Text: "Docker vs Podman for TDS Course"},
	}
)

// Builtin returns the course rule list. Pattern rules come first and always
// run. The keyword rules after them are plain substring checks ("ga" hits
// "ga4", "model" hits "models") and only run when the question overlaps the
// cache, so stray letter pairs do not pull unrelated questions into a rule.
func Builtin() []Rule {
	return []Rule{
		{ID: "gpt-model", Trigger: Pattern(`gpt.*4o.*mini|gpt.*3\.?5.*turbo|ai.*proxy.*gpt`), Answer: answerGPTModel, Links: linksGPTModel},
		{ID: "python-setup", Trigger: Pattern(`python.*setup|environment.*setup|installation`), Answer: answerPythonSetup},
		{ID: "visualization", Trigger: Pattern(`visualization|chart|plot|graph`), Answer: answerVisualization},
		{ID: "assignment-submission", Trigger: Pattern(`assignment.*submission|submit.*assignment`), Answer: answerSubmission},
		{ID: "docker-podman", Trigger: Pattern(`docker.*podman|podman.*docker|containerization`), Answer: answerDockerPodman, Links: linksDocker},
		{ID: "dashboard-score", Trigger: Pattern(`dashboard.*score|score.*dashboard|ga.*bonus|bonus.*ga`), Answer: answerDashboard, Links: linksDashboard},
		{ID: "exam-schedule", Trigger: Pattern(`sep.*2025.*exam|2025.*exam|end.*term.*exam`), Answer: answerExam},

		{ID: "gpt-model-words", Trigger: Substring("gpt", "model", "ai", "proxy"), Answer: answerGPTModel, Links: linksGPTModel, NeedsContext: true},
		{ID: "python-setup-words", Trigger: All(Substring("python"), Substring("setup", "environment")), Answer: answerPythonSetup, NeedsContext: true},
		{ID: "visualization-words", Trigger: Substring("visualization", "chart", "plot", "graph"), Answer: answerVisualization, NeedsContext: true},
		{ID: "assignment-submission-words", Trigger: All(Substring("assignment"), Substring("submit", "submission")), Answer: answerSubmission, NeedsContext: true},
		{ID: "docker-podman-words", Trigger: Substring("docker", "podman"), Answer: answerDockerPodman, Links: linksDocker, NeedsContext: true},
		{ID: "dashboard-score-words", Trigger: Substring("dashboard", "score", "bonus", "ga"), Answer: answerDashboard, Links: linksDashboard, NeedsContext: true},
		{ID: "exam-schedule-words", Trigger: Substring("exam", "2025", "september", "end-term"), Answer: answerExam, NeedsContext: true},
		{ID: "screenshot", Trigger: All(Image(), Any(Word("error", "screenshot", "traceback", "exception"), Substring("attached", "image"))), Answer: answerScreenshot},
	}
}
