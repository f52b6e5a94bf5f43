package resource

// NarratorComments carries the per-style template pools. Templates may
// reference {name} and {streak}.
type NarratorComments struct {
	Correct  []string
	Wrong    []string
	Streak   []string
	Comeback []string
}

var (
	GameShowComments = NarratorComments{
		Correct: []string{
			"BOOM! That's correct!", "And the crowd goes wild!", "Nailed it! Absolutely brilliant!",
			"Right on the money!", "That's the answer we were looking for!", "Spectacular!",
		},
		Wrong: []string{
			"Ooh, not quite!", "The correct answer was just out of reach!", "So close, yet so far!",
			"A valiant effort!", "That one stumped even the best!", "Better luck on the next one!",
		},
		Streak: []string{
			"They're on FIRE! {streak} in a row!", "Can anyone stop {name}?! {streak}-streak!",
			"Unstoppable! {name} with {streak} consecutive correct answers!",
			"The streak continues! {name} is in the ZONE!",
		},
		Comeback: []string{
			"And {name} bounces back!", "The comeback is ON!", "That's the spirit, {name}!",
		},
	}

	SarcasticComments = NarratorComments{
		Correct: []string{
			"Oh wow, you actually knew that one.", "Look at you, using that brain.",
			"Correct. Don't let it go to your head.", "Even a broken clock is right twice a day... well done.",
			"I'd slow clap but I'm an AI.", "Someone's been doing their homework.",
		},
		Wrong: []string{
			"Oof. That was... a choice.", "Were you even trying?", "Bold answer. Wrong, but bold.",
			"I mean, that's ONE way to answer...", "The audacity of that guess.",
			"Have you considered just guessing the other one next time?",
		},
		Streak: []string{
			"Okay, {name}, we get it. You're smart. {streak} in a row.",
			"Is {name} cheating? {streak}-streak says maybe.",
			"{streak} correct? Are you really good or is everyone else really bad?",
		},
		Comeback: []string{
			"Oh, so you DO know things.", "Welcome back to planet correct answers.",
		},
	}

	EncouragingComments = NarratorComments{
		Correct: []string{
			"Amazing job! You've got this!", "Wonderful! Your knowledge is shining!",
			"Perfectly done! Keep that momentum!", "That's the way! Brilliant thinking!",
			"You should be so proud of that answer!", "Fantastic! Your prep is paying off!",
		},
		Wrong: []string{
			"That's okay! You're learning something new!", "Don't worry, that was tricky!",
			"Every miss is a chance to learn! You've got the next one!",
			"That's a tough question - you're still doing great!",
			"Remember, it's about having fun! Great effort!",
			"You'll get the next one, I believe in you!",
		},
		Streak: []string{
			"Incredible, {name}! {streak} in a row! You're a star!",
			"Look at you go, {name}! {streak} correct! So impressive!",
			"You're absolutely glowing, {name}! {streak}-streak!",
		},
		Comeback: []string{
			"YES! I knew you had it in you, {name}!", "That's the comeback spirit!",
			"See? Never give up! Beautiful answer!",
		},
	}
)
