// Package generators генерирует тестовые учетные данные для инструментов Junior и TeamLead.
package generators

import (
	"math/rand/v2"
	"strconv"
	"strings"
	"time"
)

const (
	upperChars  = "ABCDEFGHJKLMNPQRSTUVWXYZ"
	lowerChars  = "abcdefghijkmnopqrstuvwxyz"
	digitChars  = "23456789"
	symbolChars = "!@#$%^&*"

	MinPasswordLength = 10
	MaxPasswordLength = 14
)

// UKMobilePrefixes трехзначные префиксы после ведущей 7
var UKMobilePrefixes = []string{
	"400", "401", "402", "403", "404", "405", "406", "407", "408", "409",
	"500", "501", "502", "503", "504", "505", "506", "507", "508", "509",
	"700", "701", "702", "703", "704", "705", "706", "707", "708", "709",
	"710", "711", "712", "713", "714", "715", "716", "717", "718", "719",
	"720", "721", "722", "723", "724", "725", "726", "727", "728", "729",
	"730", "731", "732", "733", "734", "735", "736", "737", "738", "739",
	"740", "741", "742", "743", "744", "745", "746", "747", "748", "749",
	"750", "751", "752", "753", "754", "755", "756", "757", "758", "759",
	"760", "761", "762", "763", "764", "765", "766", "767", "768", "769",
	"770", "771", "772", "773", "774", "775", "776", "777", "778", "779",
	"780", "781", "782", "783", "784", "785", "786", "787", "788", "789",
	"790", "791", "792", "793", "794", "795", "796", "797", "798", "799",
	"800", "801", "802", "803", "804", "805", "806", "807", "808", "809",
	"900", "901", "902", "903", "904", "905", "906", "907", "908", "909",
	"910", "911", "912", "913", "914", "915", "916", "917", "918", "919",
	"920", "921", "922", "923", "924", "925", "926", "927", "928", "929",
	"930", "931", "932", "933", "934", "935", "936", "937", "938", "939",
	"940", "941", "942", "943", "944", "945", "946", "947", "948", "949",
	"950", "951", "952", "953", "954", "955", "956", "957", "958", "959",
	"960", "961", "962", "963", "964", "965", "966", "967", "968", "969",
	"970", "971", "972", "973", "974", "975", "976", "977", "978", "979",
	"980", "981", "982", "983", "984", "985", "986", "987", "988", "989",
}

var (
	firstNames = []string{
		"oliver", "george", "harry", "jack", "jacob", "noah", "charlie", "thomas",
		"oscar", "william", "amelia", "olivia", "isla", "emily", "poppy", "ava",
		"isabella", "jessica", "lily", "sophie",
	}
	lastNames = []string{
		"smith", "jones", "taylor", "brown", "williams", "wilson", "johnson",
		"davies", "robinson", "wright", "thompson", "evans", "walker", "white",
		"roberts", "green", "hall", "wood", "jackson", "clarke",
	}
	emailDomains = []string{"gmail.com", "outlook.com", "yahoo.co.uk", "hotmail.co.uk", "icloud.com"}
)

// Generator генератор данных с собственным источником случайности
type Generator struct {
	rnd *rand.Rand
}

// New создает генератор с заданным источником
func New(src rand.Source) *Generator {
	return &Generator{rnd: rand.New(src)}
}

// NewDefault создает генератор, инициализированный текущим временем
func NewDefault() *Generator {
	seed := uint64(time.Now().UnixNano())
	return New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func (g *Generator) pick(list []string) string {
	return list[g.rnd.IntN(len(list))]
}

func (g *Generator) char(set string) byte {
	return set[g.rnd.IntN(len(set))]
}

// Username возвращает логин вида oliver.smith84
func (g *Generator) Username() string {
	sep := []string{".", "_", ""}[g.rnd.IntN(3)]
	return g.pick(firstNames) + sep + g.pick(lastNames) + strconv.Itoa(g.rnd.IntN(90)+10)
}

// Password возвращает пароль длиной 10-14 символов, содержащий
// хотя бы одну заглавную, строчную букву, цифру и символ.
func (g *Generator) Password() string {
	length := MinPasswordLength + g.rnd.IntN(MaxPasswordLength-MinPasswordLength+1)
	all := upperChars + lowerChars + digitChars + symbolChars

	buf := make([]byte, 0, length)
	buf = append(buf, g.char(upperChars), g.char(lowerChars), g.char(digitChars), g.char(symbolChars))
	for len(buf) < length {
		buf = append(buf, g.char(all))
	}
	g.rnd.Shuffle(len(buf), func(i, j int) { buf[i], buf[j] = buf[j], buf[i] })
	return string(buf)
}

// UKPhone возвращает национальный номер мобильного телефона без нуля: 7 + префикс + 6 цифр
func (g *Generator) UKPhone() string {
	var b strings.Builder
	b.WriteByte('7')
	b.WriteString(g.pick(UKMobilePrefixes))
	for i := 0; i < 6; i++ {
		b.WriteByte(byte('0' + g.rnd.IntN(10)))
	}
	return b.String()
}

// FormatUKPhone форматирует номер как +44 7xxx xxxxxx
func FormatUKPhone(number string) string {
	if len(number) != 10 {
		return number
	}
	return "+44 " + number[:4] + " " + number[4:]
}

// Email возвращает адрес на основе логина
func (g *Generator) Email() string {
	return g.EmailFor(g.Username())
}

// EmailFor возвращает адрес для указанного логина
func (g *Generator) EmailFor(username string) string {
	return strings.ToLower(username) + "@" + g.pick(emailDomains)
}

// Identity набор сгенерированных данных для одной учетной записи
type Identity struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
}

// Identity генерирует связанный набор данных
func (g *Generator) Identity() Identity {
	username := g.Username()
	return Identity{
		Username: username,
		Password: g.Password(),
		Phone:    FormatUKPhone(g.UKPhone()),
		Email:    g.EmailFor(username),
	}
}
