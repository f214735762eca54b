package catalog

// DemoCourses is the catalog seeded on startup when the courses table is
// missing entries. Inserts are idempotent on title.
var DemoCourses = []Course{
	{
		Title:     "LangGraph in Action: Develop Advanced AI Agents with LLMs",
		Price:     54.99,
		ImageURL:  "https://img-c.udemycdn.com/course/750x422/6359927_fb55_3.jpg",
		CourseURL: "https://www.udemy.com",
	},
	{
		Title:     "Advanced LangChain Techniques: Mastering RAG Applications",
		Price:     49.99,
		ImageURL:  "https://img-c.udemycdn.com/course/750x422/6052857_31ba_3.jpg",
		CourseURL: "https://www.udemy.com",
	},
	{
		Title:     "LangChain on Azure - Building Scalable LLM Applications",
		Price:     34.99,
		ImageURL:  "https://img-c.udemycdn.com/course/750x422/5734832_ba74.jpg",
		CourseURL: "https://www.udemy.com",
	},
	{
		Title:     "LangChain in Action: Develop LLM-Powered Applications",
		Price:     27.99,
		ImageURL:  "https://img-c.udemycdn.com/course/750x422/5621170_d56e_2.jpg",
		CourseURL: "https://www.udemy.com",
	},
	{
		Title:     "FastAPI für Anfänger - Baue einen Twitter Clone mit FastAPI",
		Price:     44.99,
		ImageURL:  "https://img-c.udemycdn.com/course/750x422/5055186_4547_3.jpg",
		CourseURL: "https://www.udemy.com",
	},
}
