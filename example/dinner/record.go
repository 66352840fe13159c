package main

import "github.com/tbxark/convoform"

func dinnerOrder() convoform.Builder {
	return convoform.NewBuilder("DinnerOrder", "Take a dinner order from a restaurant guest.").
		Initiator("friendly waiter", "speaks briefly", "recommends the special when asked").
		Respondent("restaurant guest").
		PossibleTrait("respondent", "allergic", "the guest mentions a food allergy or intolerance").
		PossibleTrait("respondent", "rushed", "the guest says they are short on time").
		Field(convoform.NewField("name", "Name for the order").
			Must("a first name")).
		Field(convoform.NewField("party_size", "How many people are dining").
			AsInt("number of people")).
		Field(convoform.NewField("starter", "Starter course").
			AsOne("", "the starter the guest picked", "Garden salad", "Tomato soup", "Bruschetta")).
		Field(convoform.NewField("main", "Main course").
			Reject("anything not on the menu").
			AsOne("", "the main the guest picked", "Risotto", "Grilled salmon", "Steak frites")).
		Field(convoform.NewField("extras", "Side dishes").
			AsMultiple("", "sides ordered", "Fries", "Green beans", "Bread")).
		Field(convoform.NewField("satisfaction", "How pleased the guest seemed").
			Conclude().
			AsOne("", "overall mood", "happy", "neutral", "unhappy"))
}
