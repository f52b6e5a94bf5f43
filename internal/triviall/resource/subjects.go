package resource

import (
	"regexp"
	"strings"

	"github.com/enescakir/emoji"
)

type Subject struct {
	Name      string
	Icon      string
	SubTopics []string
}

const DefaultSubject = "General Knowledge"

var DefaultAvatar = emoji.BustInSilhouette.String()

var Subjects = []Subject{
	{Name: "History", Icon: emoji.Scroll.String(), SubTopics: []string{"Ancient Rome", "World War II", "Medieval Europe", "Ancient Egypt", "American History", "Cold War", "Renaissance"}},
	{Name: "Science", Icon: emoji.Microscope.String(), SubTopics: []string{"Physics", "Biology", "Chemistry", "Space & Astronomy", "Marine Biology", "Quantum Mechanics"}},
	{Name: "Movies", Icon: emoji.ClapperBoard.String(), SubTopics: []string{"Classic Cinema", "Marvel & DC", "Horror Films", "Animated Films", "Oscar Winners", "Sci-Fi"}},
	{Name: "Music", Icon: emoji.MusicalNote.String(), SubTopics: []string{"Rock & Metal", "Hip-Hop", "Classical Music", "Pop", "Jazz & Blues", "K-Pop"}},
	{Name: "Gaming", Icon: emoji.VideoGame.String(), SubTopics: []string{"Nintendo", "PlayStation", "PC Gaming", "Retro Games", "Esports", "Indie Games"}},
	{Name: "Art", Icon: emoji.ArtistPalette.String(), SubTopics: []string{"Renaissance Art", "Modern Art", "Photography", "Sculpture", "Architecture"}},
	{Name: "Tech", Icon: emoji.Laptop.String(), SubTopics: []string{"AI & Machine Learning", "Smartphones", "Programming", "Internet History", "Cybersecurity"}},
	{Name: "Nature", Icon: emoji.Herb.String(), SubTopics: []string{"Rainforests", "Oceans", "Volcanoes & Geology", "Weather", "Endangered Species"}},
	{Name: "Sports", Icon: emoji.SoccerBall.String(), SubTopics: []string{"Football/Soccer", "Basketball", "Olympics", "Tennis", "Formula 1", "Cricket"}},
	{Name: "Food", Icon: emoji.Cooking.String(), SubTopics: []string{"Italian Cuisine", "Asian Food", "Baking", "Food Science", "World Street Food"}},
	{Name: "Travel", Icon: emoji.Airplane.String(), SubTopics: []string{"European Cities", "World Wonders", "National Parks", "Islands", "Ancient Ruins"}},
	{Name: "Animals", Icon: emoji.PawPrints.String(), SubTopics: []string{"Mammals", "Marine Life", "Birds", "Reptiles", "Insects", "Dinosaurs"}},
	{Name: DefaultSubject, Icon: emoji.Brain.String(), SubTopics: []string{}},
}

var CustomSubjectIcon = emoji.Pencil.String()

func IsPredefinedSubject(name string) bool {
	for _, s := range Subjects {
		if strings.EqualFold(s.Name, name) {
			return true
		}
	}
	return false
}

func SubjectIcon(name string) string {
	for _, s := range Subjects {
		if strings.EqualFold(s.Name, name) {
			return s.Icon
		}
	}
	return CustomSubjectIcon
}

// BlockedPatterns rejects unsafe custom subjects before they ever reach the
// question generator.
var BlockedPatterns = []*regexp.Regexp{
	// profanity and slurs
	regexp.MustCompile(`(?i)\b(fuck|shit|ass|damn|bitch|bastard|crap|dick|cock|pussy|slut|whore|nigger|faggot|retard)\b`),
	// sexual content
	regexp.MustCompile(`(?i)\b(porn|hentai|xxx|sex\s*position|erotic|fetish|nude|naked)\b`),
	// violence and self-harm
	regexp.MustCompile(`(?i)\b(how\s+to\s+kill|murder\s+method|torture|bomb\s+making|suicide\s+method|self[- ]?harm)\b`),
	// drug manufacturing
	regexp.MustCompile(`(?i)\b(how\s+to\s+make\s+(meth|crack|cocaine|heroin|drugs))\b`),
	// hate and extremism
	regexp.MustCompile(`(?i)\b(white\s+supremac|nazi\s+ideology|ethnic\s+cleansing|genocide\s+how)\b`),
}
