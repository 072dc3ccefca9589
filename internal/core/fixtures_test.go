package core

func sampleProjects() []Project {
	return []Project{
		{ID: "1", Name: "Centro Comunitario Norte", Status: StatusActive, Budget: Pesos(450000), Progress: 75,
			Deadline: "15/Oct/2025", Responsible: "Ing. Ana Torres", Client: "Municipio de Guadalajara"},
		{ID: "2", Name: "Parque Infantil Sur", Status: StatusPending, Budget: Pesos(280000), Progress: 25,
			Deadline: "30/Nov/2025", Responsible: "Arq. Luis Vega", Client: "Fundación Privada"},
		{ID: "3", Name: "Biblioteca Municipal", Status: StatusCompleted, Budget: Pesos(620000), Progress: 100,
			Deadline: "20/Ago/2025", CompletedOn: "20/Ago/2025", Responsible: "Ing. Sofia Reyes", Client: "Gobierno del Estado"},
		{ID: "4", Name: "Centro de Salud Este", Status: StatusActive, Budget: Pesos(890000), Progress: 60,
			Deadline: "05/Dic/2025", Responsible: "Ing. Carlos Ponce", Client: "Secretaría de Salud"},
	}
}

func sampleReceivables() []Receivable {
	return []Receivable{
		{ID: "c1", Client: "Municipio de Guadalajara", Amount: Pesos(450000), Status: ReceivableUpcomingDue},
		{ID: "c2", Client: "Gobierno del Estado", Amount: Pesos(620000), Status: ReceivableReadyToInvoice},
		{ID: "c3", Client: "Fundación Privada", Amount: Pesos(280000), Status: ReceivablePendingApproval},
	}
}
