package api

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/csheth/tripnotes/internal/cards"
)

const defaultOrigin = "Zagreb"

type mockCarrier struct {
	code, name string
}

var mockCarriers = []mockCarrier{{"FR", "Ryanair"}, {"U2", "EasyJet"}, {"W6", "Wizz Air"}}

type mockHotel struct {
	name   string
	rating float64
	price  int
}

var mockHotels = []mockHotel{
	{"Luxury Hotel", 5.0, 180},
	{"Boutique Hotel", 4.5, 120},
	{"City Center Inn", 4.2, 75},
}

type mockRestaurant struct {
	name, cuisine string
	rating        float64
	priceLevel    string
}

var mockRestaurants = []mockRestaurant{
	{"La Maison", "French Fine Dining", 4.8, "$$$"},
	{"Trattoria Bella", "Italian", 4.5, "$$"},
	{"Local Kitchen", "Traditional", 4.3, "$"},
}

type mockActivity struct {
	name, summary string
	price         int
}

var mockActivities = []mockActivity{
	{"City Walking Tour", "Guided tour • 3 hours", 25},
	{"Museum Pass", "Access to 5 museums", 45},
	{"Food & Wine Tasting", "4 hours • 6 tastings", 75},
	{"Day Trip Excursion", "Full day • Transport included", 95},
}

// MockPlan builds placeholder options for req without any network access.
// The records use the same fields as live planner results.
func MockPlan(req PlanRequest) Plan {
	req = req.Normalize(now())
	destination := req.Destination
	origin := req.Origin
	from := origin
	if from == "" {
		from = "Your city"
	}
	linkOrigin := origin
	if linkOrigin == "" {
		linkOrigin = defaultOrigin
	}

	plan := Plan{
		Origin:        origin,
		Destination:   destination,
		DepartureDate: req.DepartureDate,
		ReturnDate:    req.ReturnDate,
		Mock:          true,
	}
	for i, carrier := range mockCarriers {
		stops := "Direct"
		if i >= 2 {
			stops = "1 stop"
		}
		plan.Transport = append(plan.Transport, cards.Record{
			"id":           fmt.Sprintf("flight_%d", i+1),
			"type":         "flight",
			"title":        fmt.Sprintf("%s to %s", carrier.name, destination),
			"subtitle":     fmt.Sprintf("%s → %s", from, destination),
			"carrier":      carrier.name,
			"carrier_code": carrier.code,
			"duration":     fmt.Sprintf("%dh %dm", 2+i, 15+i*10),
			"stops_text":   stops,
			"price":        float64(89 + i*45),
			"currency":     "EUR",
			"booking_link": flightLink(linkOrigin, destination),
		})
	}
	plan.Transport = append(plan.Transport,
		cards.Record{
			"id":           "bus_1",
			"type":         "bus",
			"title":        "FlixBus to " + destination,
			"subtitle":     fmt.Sprintf("%s → %s", from, destination),
			"carrier":      "FlixBus",
			"duration":     "8-12h",
			"price":        float64(45),
			"currency":     "EUR",
			"booking_link": "https://shop.flixbus.com/search?departureCity=" + url.QueryEscape(linkOrigin) + "&arrivalCity=" + url.QueryEscape(destination),
		},
		cards.Record{
			"id":           "train_1",
			"type":         "train",
			"title":        "Train to " + destination,
			"subtitle":     "High-speed rail connection",
			"carrier":      "Rail Europe",
			"duration":     "5-8h",
			"price":        float64(65),
			"currency":     "EUR",
			"booking_link": "https://www.thetrainline.com/book/results?origin=" + url.QueryEscape(linkOrigin) + "&destination=" + url.QueryEscape(destination),
		},
	)
	for i, hotel := range mockHotels {
		name := hotel.name + " " + destination
		plan.Hotels = append(plan.Hotels, cards.Record{
			"id":              fmt.Sprintf("hotel_%d", i+1),
			"name":            name,
			"subtitle":        fmt.Sprintf("%g★ • City Center", hotel.rating),
			"rating":          hotel.rating,
			"price_per_night": float64(hotel.price),
			"currency":        "EUR",
			"address":         "Central " + destination,
			"booking_link":    bookingLink(name, req.DepartureDate, req.ReturnDate),
		})
	}
	for i, r := range mockRestaurants {
		plan.Restaurants = append(plan.Restaurants, cards.Record{
			"id":           fmt.Sprintf("restaurant_%d", i+1),
			"name":         r.name,
			"subtitle":     r.cuisine,
			"rating":       r.rating,
			"price_level":  r.priceLevel,
			"address":      destination,
			"booking_link": tripadvisorLink(destination, "Restaurants"),
		})
	}
	for i, a := range mockActivities {
		plan.Activities = append(plan.Activities, cards.Record{
			"id":           fmt.Sprintf("activity_%d", i+1),
			"name":         a.name,
			"subtitle":     a.summary,
			"rating":       4.5 + float64(i%3)/10,
			"price":        float64(a.price),
			"address":      destination,
			"booking_link": tripadvisorLink(destination, "Attractions"),
		})
	}
	plan.Links = map[string]string{
		"flights":    flightLink(linkOrigin, destination),
		"hotels":     bookingLink(destination, req.DepartureDate, req.ReturnDate),
		"activities": tripadvisorLink(destination, "Attractions"),
	}
	return plan
}

func flightLink(origin, destination string) string {
	return fmt.Sprintf("https://www.skyscanner.com/transport/flights/%s/%s/", airportGuess(origin), airportGuess(destination))
}

func airportGuess(city string) string {
	letters := []rune(strings.ToLower(strings.ReplaceAll(city, " ", "")))
	if len(letters) > 3 {
		letters = letters[:3]
	}
	return url.PathEscape(string(letters))
}

func bookingLink(destination, checkin, checkout string) string {
	link := "https://www.booking.com/searchresults.html?ss=" + url.QueryEscape(destination)
	if checkin != "" {
		link += "&checkin=" + checkin
	}
	if checkout != "" {
		link += "&checkout=" + checkout
	}
	return link
}

func tripadvisorLink(destination, kind string) string {
	return "https://www.tripadvisor.com/Search?q=" + url.QueryEscape(destination) + "+" + url.QueryEscape(kind)
}
