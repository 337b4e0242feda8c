package frequency

// DefaultStopWords are function words of four or more letters that carry no
// theme, Polish first, then the English ones common in quoted sources.
var DefaultStopWords = []string{
	// Polish
	"albo", "ale", "bardzo", "bez", "będzie", "będą", "było", "była", "były",
	"czyli", "dlaczego", "dlatego", "gdzie", "jako", "jakie", "jednak", "jego",
	"jeden", "jedna", "jest", "jeszcze", "jeśli", "jeżeli", "już", "kiedy",
	"która", "które", "który", "którzy", "mnie", "może", "można", "nawet",
	"niego", "niej", "nich", "nigdy", "oraz", "poza", "przed", "przez", "przy",
	"również", "sobie", "swoje", "swój", "także", "teraz", "tego", "tych",
	"tylko", "wiele", "więc", "wszystko", "wszystkie", "zawsze", "został",
	"została", "zostało", "znowu", "żeby",
	// English
	"about", "after", "also", "been", "before", "from", "have", "into", "more",
	"that", "their", "them", "then", "there", "these", "they", "this", "were",
	"what", "when", "which", "will", "with", "would", "your",
}
