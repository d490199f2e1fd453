package intent

import "strings"

// stopWords is a compact English stop list of function words and vague quantifiers.
var stopWords = toSet(`
a about above after again against all almost alone along already also although always am among an and
another any anyone anything anywhere are around as at back be became because become been before
being below beside between both but by can cannot could did do does doing done down during each
either else enough even ever every everyone everything few for from further get give go had has
have having he her here hers herself him himself his how however i if in into is it its itself
just keep last least less made make many may me might mine more most much must my myself neither
never nevertheless next no nobody none nor not nothing now of off often on once one only onto or
other others otherwise our ours ourselves out over own part per perhaps please put quite rather
really regarding same say see seem seemed seems several she should show side since so some someone
something sometime sometimes somewhere still such take than that the their theirs them themselves
then there therefore these they thing things this those though through thus to together too toward
towards under until up upon us used using very via was we well were what whatever when whenever
where whether which while who whoever whole whom whose why will with within without would yet you
your yours yourself yourselves
`)

func toSet(words string) map[string]struct{} {
	fields := strings.Fields(words)
	set := make(map[string]struct{}, len(fields))
	for _, w := range fields {
		set[w] = struct{}{}
	}
	return set
}

// IsStopWord reports whether word (any case) is on the stop list.
func IsStopWord(word string) bool {
	_, ok := stopWords[strings.ToLower(word)]
	return ok
}
