package format

import "strings"

// prefix builds a rule replacing any operator name starting with the given
// text by the canonical label.
func prefix(p, repl string) Substitution {
	return sub(`(?i)^`+p+`.*$`, repl)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	s = strings.ToLower(s)
	return strings.ToUpper(s[:1]) + s[1:]
}

// operatorRules canonicalize the observed variants of carrier names. The
// first block matches on well-behaved name prefixes; the second handles
// spelling and punctuation differences. First match wins.
var operatorRules = []Substitution{
	prefix("A1", "A1"),
	prefix("Aircel", "Aircel"),
	prefix("Airtel", "Airtel"),
	prefix("AIS", "AIS"),
	prefix("AKTel", "Robi"),
	prefix("Alltel", "Alltel"),
	prefix("AT&T", "AT&T"),
	prefix("B-Mobile", "B-Mobile"),
	prefix("Banglalink", "Banglalink"),
	prefix("Base", "Base"),
	prefix("Batelco", "Batelco"),
	prefix("Bell", "Bell"),
	prefix("Bite", "Bite"),
	prefix("blau", "blau"),
	prefix("Bob", "Bob"),
	prefix("Bouygues", "Bouygues"),
	prefix("Breeze", "Breeze"),
	prefix("CCT", "CCT"),
	prefix("Cellular One", "Cellular One"),
	prefix("Claro", "Claro"),
	prefix("Cloud9", "Cloud9"),
	prefix("Comcel", "Claro"),
	prefix("Congstar", "Congstar"),
	prefix("Corr", "Corr"),
	prefix("CTBC", "CTBC"),
	prefix("delight", "delight"),
	prefix("Digicel", "Digicel"),
	prefix("Digitel", "Digitel"),
	prefix("Digital", "Digital"),
	prefix("disco", "disco"),
	prefix("Djuice", "Djuice"),
	prefix("DNA", "DNA"),
	prefix("Dolphin", "Dolphin"),
	prefix("DTAC", "DTAC"),
	prefix("E-Plus", "E-Plus"),
	prefix("Econet", "Econet"),
	prefix("eMobile", "eMobile"),
	prefix("Emtel", "Emtel"),
	prefix("Entel", "Entel"),
	prefix("Etisalat", "Etisalat"),
	prefix("Euskatel", "Euskatel"),
	prefix("Farmers", "Farmers"),
	prefix("Fastweb", "Fastweb"),
	prefix("Fonex", "Fonex"),
	prefix("Free", "Free"),
	prefix("Gemalto", "Gemalto"),
	prefix("Globalstar", "Globalstar"),
	prefix("Globe", "Globe"),
	prefix("GLOBUL", "GLOBUL"),
	prefix("Golan", "Golan"),
	prefix("Golden Telecom", "Golden Telecom"),
	prefix("Grameen", "Grameenphone"),
	sub(`(?i)^GP$`, "Grameenphone"),
	prefix("Hello", "Hello"),
	prefix("Highland", "Highland"),
	prefix("Hits", "Hits"),
	prefix("Hormuud", "Hormuud"),
	prefix("HT", "HT"),
	prefix("ICE", "ICE"),
	prefix("Idea", "Idea"),
	prefix("Indigo", "Indigo"),
	prefix("Indosat", "Indosat"),
	prefix("Jawwal", "Jawwal"),
	prefix("Jazztel", "Jazztel"),
	prefix("KTF", "KTF"),
	prefix("Liaoning", "China Mobile"),
	prefix("Libertis", "Libertis"),
	prefix("Maroc Telecom", "Maroc Telecom"),
	prefix("MIO", "MIO"),
	prefix("Mobilis", "Mobilis"),
	prefix("mobilR", "mobilR"),
	prefix("mobily", "mobily"),
	prefix("Mobistar", "Mobistar"),
	prefix("Moov", "Moov"),
	prefix("Movilnet", "Movilnet"),
	prefix("Namaste", "Namaste"),
	prefix("Nawras", "Nawras"),
	prefix("NEP", "NEP"),
	prefix("Netz", "Netz"),
	prefix("Nextel", "Nextel"),
	prefix("Nitz", "Nitz"),
	prefix("O2", "O2"),
	prefix("olleh", "olleh"),
	prefix("One.Tel", "One.Tel"),
	prefix("OnePhone", "OnePhone"),
	prefix("Orange", "Orange"),
	prefix("Outremer", "Outremer"),
	prefix("OY", "OY"),
	prefix("Play", "Play"),
	prefix("Plus", "Plus"),
	prefix("Poka Lambro", "Poka Lambro"),
	prefix("Polska Telefonia", "Polska Telefonia"),
	prefix("Reliance", "Reliance"),
	prefix("Robi", "Robi"),
	prefix("Rogers", "Rogers"),
	prefix("Rwandatel", "Rwandatel"),
	prefix("Scarlet", "Scarlet"),
	prefix("SERCOM", "SERCOM"),
	prefix("SFR", "SFR"),
	prefix("Simyo", "Simyo"),
	prefix("SingTel", "SingTel"),
	prefix("SKT", "SKT"),
	prefix("SmarTone", "SmarTone"),
	prefix("Smile", "Smile"),
	prefix("Softbank", "Softbank"),
	prefix("Southern Communications", "Southern Communications"),
	prefix("Spacetel", "Spacetel"),
	prefix("Tango", "Tango"),
	prefix("TATA Teleservices", "Docomo"),
	prefix("Telcel", "Telcel"),
	prefix("Telenor", "Telenor"),
	prefix("Teletalk", "Teletalk"),
	prefix("Tele.ring", "Tele.ring"),
	prefix("Telma", "Telma"),
	prefix("Telstra", "Telstra"),
	prefix("Telus", "Telus"),
	prefix("Tesco", "Tesco"),
	prefix("Test", "Test"),
	prefix("Thinta", "Thinta"),
	prefix("Thuraya", "Thuraya"),
	prefix("Tigo", "Tigo"),
	prefix("TMA", "TMA"),
	prefix("True", "True"),
	prefix("Tuenti", "Tuenti"),
	prefix("Unicom", "Unicom"),
	prefix("Uninor", "Uninor"),
	prefix("UTS", "UTS"),
	prefix("Vectone", "Vectone"),
	prefix("Velcom", "Velcom"),
	prefix("Videocon", "Videocon"),
	prefix("Viettel", "Viettel"),
	prefix("VIP", "VIP"),
	prefix("Virgin", "Virgin"),
	prefix("Viva", "Viva"),
	prefix("Vivo", "Vivo"),
	prefix("VoiceStream", "VoiceStream"),
	prefix("VTR", "VTR"),
	prefix("Warid", "Warid"),
	prefix("Wataniya", "Wataniya"),
	prefix("Wind", "Wind"),
	prefix("XL", "XL"),
	prefix("Yesss", "Yesss"),
	prefix("Yoigo", "Yoigo"),
	prefix("Zain", "Zain"),
	// Spelling and punctuation variants.
	sub(`(?i)^!dea(\s.+)?$`, "Idea"),
	sub(`(?i)^3[^\w].+$`, "3"),
	sub(`(?i)^bee\s*line(\s.+)?$`, "Beeline"),
	sub(`(?i)^bh\s*mobile(\s.+)?$`, "BH Mobile"),
	sub(`(?i)^(.+\s)?bsnl(\s.+)?$`, "BSNL"),
	sub(`(?i)^cab(le|el) (&|and) wireless.*$`, "Cable & Wireless"),
	sub(`(?i)celcom`, "Cellcom"),
	subg(`(?i)^(?:.+\s)?china.*\s(?P<suffix>mobile|telecom|unicom)(\s.+)?$`, func(groups []string) string {
		return "China " + capitalize(groups[1])
	}),
	sub(`(?i)^(chn-)?(unicom|cu[^\w]*(cc|gsm)).*$`, "China Unicom"),
	sub(`(?i)^CMCC$`, "China Mobile"),
	sub(`(?i)^(chungh?wa.*|CHT)$`, "Chunghwa"),
	sub(`(?i)^.*cingular.*$`, "Cingular"),
	sub(`(?i)^(.+\s)?cosmote(\s.+)?$`, "Cosmote"),
	sub(`(?i)^da?tatel(\s.+)?$`, "Datatel"),
	sub(`(?i)^diall?og$`, "Dialog"),
	sub(`(?i)^digi([^\w]+.*)?$`, "Digi"),
	sub(`(?i)^(.+\s)?docomo(\s.+)?$`, "Docomo"),
	sub(`(?i)^esto es el.+$`, Unknown),
	sub(`(?i)^glo(\s.+)?$`, "Glo"),
	sub(`(?i)^gramee?n(phone)?$`, "Grameenphone"),
	sub(`(?i)^guin.tel.*$`, "Guinetel"),
	sub(`(?i)^life(\s.+)?$`, "life:)"),
	sub(`(?i)^lime(\s.+)?$`, "Lime"),
	sub(`(?i)^lyca.*$`, "Lyca Mobile"),
	sub(`(?i)^m[:-]?tel(\s.+)?$`, "M-Tel"),
	sub(`(?i)^medion\s*mobile(\s.+)?`, "Medion"),
	sub(`(?i)^mobil?com([^\w].+)?$`, "Mobilcom"),
	sub(`(?i)^mobil?tel(\s.+)?$`, "Mobitel"),
	sub(`(?i)^(.+\s)?movie?star(\s.+)?$`, "Movistar"),
	subg(`(?i)^mt:?(?P<suffix>[cns])([^\w].*)?$`, func(groups []string) string {
		return "MT" + strings.ToUpper(groups[1])
	}),
	sub(`(?i)^mudio`, "Mundio"),
	sub(`(?i)^oi(\s.+)?$`, "Oi"),
	sub(`(?i)^proxi(mus)?(\s.+)?$`, "Proximus"),
	sub(`(?i)^Sask\s?[Tt]el.*$`, "SaskTel"),
	sub(`(?i)^smarts?(\s.+)?$`, "Smart"),
	sub(`(?i)^s\s+tel.*$`, "S Tel"),
	sub(`(?i)^sun(\s.+)?$`, "Sun"),
	sub(`(?i)^t\s*-\s*mobile.*$`, "T-Mobile"),
	sub(`(?i)^.*tele?\s*2.*$`, "Tele2"),
	sub(`(?i)^tel\w+\scel$`, "Telecel"),
	sub(`(?i)^telekom\.de(\s.+)?$`, "T-Mobile"),
	sub(`(?i)^telekom(\.|\s)hu(\s.+)?$`, "T-Mobile"),
	sub(`(?i)^tm([^\w].+)?$`, "TM"),
	sub(`(?i)^tw\s*m(obile)?(\s.+)?$`, "Taiwan Mobile"),
	sub(`(?i)^.*verizon.*$`, "Verizon"),
	sub(`(?i)^vid.otron.*$`, "Videotron"),
	sub(`(?i)^vip([^\w].*)?$`, "VIP"),
	sub(`(?i)^voda.*$`, "Vodafone"),
	sub(`(?i)^W1(\s.+)?$`, "WirelessOne"),
	sub(`(?i)^Wikes Cellular$`, "Wilkes Cellular"),
}
